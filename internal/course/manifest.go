package course

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/coursework/internal/domain"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML description of a course and its tasks in authoring
// order. Tasks are added one by one, so each order must be valid at the time
// its task is added.
type Manifest struct {
	Course struct {
		Title           string `yaml:"title"`
		Description     string `yaml:"description"`
		InstructorEmail string `yaml:"instructor"`
	} `yaml:"course"`
	Publish bool           `yaml:"publish"`
	Tasks   []ManifestTask `yaml:"tasks"`
}

// ManifestTask is one task entry in a manifest
type ManifestTask struct {
	Type      string              `yaml:"type"`
	Statement string              `yaml:"statement"`
	Order     int                 `yaml:"order"`
	Options   []domain.TaskOption `yaml:"options"`
}

// ParseManifest decodes a manifest, rejecting unknown keys.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse manifest: empty document")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(bytes.NewReader(data))
}

// ImportResult reports what an import created.
type ImportResult struct {
	Course *domain.Course
	Tasks  []*domain.Task
}

// ManifestError locates a failed manifest task.
type ManifestError struct {
	Index int
	Err   error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("tasks[%d]: %v", e.Index, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ImportManifest replays a manifest through the regular workflows: create
// the course, add each task, then publish when asked. It stops at the first
// failure; whatever was created before it stays.
func (s *Service) ImportManifest(ctx context.Context, m *Manifest) (*ImportResult, error) {
	course, err := s.CreateCourse(ctx, CreateCourseRequest{
		Title:           m.Course.Title,
		Description:     m.Course.Description,
		InstructorEmail: m.Course.InstructorEmail,
	})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Course: course}
	for i, mt := range m.Tasks {
		category, err := domain.ParseCategory(mt.Type)
		if err != nil {
			return result, &ManifestError{Index: i, Err: domain.NewFieldError("type", domain.ErrUnknownCategory, err.Error())}
		}

		task, err := s.AddTask(ctx, AddTaskRequest{
			CourseID:  course.ID,
			Category:  category,
			Statement: mt.Statement,
			Position:  mt.Order,
			Options:   mt.Options,
		})
		if err != nil {
			return result, &ManifestError{Index: i, Err: err}
		}
		result.Tasks = append(result.Tasks, task)
	}

	if m.Publish {
		published, err := s.PublishCourse(ctx, course.ID)
		if err != nil {
			return result, err
		}
		result.Course = published
		return result, nil
	}

	latest, err := s.GetCourse(ctx, course.ID)
	if err != nil {
		return result, err
	}
	result.Course = latest
	return result, nil
}
