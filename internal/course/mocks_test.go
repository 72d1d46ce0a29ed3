package course

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// memoryStore implements the persistence ports in memory. Courses are stored
// as detached copies so a failed Update leaves no trace.
type memoryStore struct {
	mu      sync.Mutex
	courses map[domain.CourseID]*domain.Course
	order   []domain.CourseID
	users   map[domain.UserID]*domain.User
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		courses: make(map[domain.CourseID]*domain.Course),
		users:   make(map[domain.UserID]*domain.User),
	}
}

func (m *memoryStore) store() Store {
	return Store{Courses: m, Users: (*memoryUsers)(m), Reports: (*memoryReports)(m)}
}

func cloneCourse(c *domain.Course) *domain.Course {
	tasks := make([]*domain.Task, 0, c.TaskCount())
	for _, t := range c.Tasks() {
		tasks = append(tasks, domain.RestoreTask(t.ID(), t.CourseID(), t.Category(), t.Statement(), t.Position(), t.Options(), t.CreatedAt()))
	}
	return domain.RestoreCourse(domain.CourseSnapshot{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID,
		Status:       c.Status(),
		CreatedAt:    c.CreatedAt,
		PublishedAt:  c.PublishedAt(),
		Tasks:        tasks,
	})
}

func (m *memoryStore) Create(ctx context.Context, c *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.courses[c.ID] = cloneCourse(c)
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id domain.CourseID) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (m *memoryStore) List(ctx context.Context) ([]*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Course, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneCourse(m.courses[id]))
	}
	return out, nil
}

func (m *memoryStore) Update(ctx context.Context, id domain.CourseID, fn func(*domain.Course) error) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	working := cloneCourse(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	m.courses[id] = cloneCourse(working)
	return working, nil
}

type memoryUsers memoryStore

func (m *memoryUsers) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email.Equal(u.Email) {
			return domain.ErrUserAlreadyExists
		}
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *memoryUsers) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email.Equal(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type memoryReports memoryStore

func (m *memoryReports) InstructorCourses(ctx context.Context, instructorID domain.UserID) ([]ReportItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []ReportItem
	for _, id := range m.order {
		c := m.courses[id]
		if c.InstructorID.Equal(instructorID) {
			items = append(items, ItemFromCourse(c))
		}
	}
	return items, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, events []domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

var errStoreDown = errors.New("store unavailable")
