package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

func newTaskCmd() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage course tasks",
	}

	var (
		courseID  string
		taskType  string
		statement string
		order     int
		correct   []string
		incorrect []string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to a course",
		Long: `Add a task at the given order. An order already in use shifts that task
and every later one back by one. Choice tasks take their options from
--correct and --incorrect, which may be repeated.`,
		Example: `  coursework task add --course <id> --type open_text --statement "What is a goroutine?" --order 1
  coursework task add --course <id> --type single_choice --statement "Pick the Go keyword" --order 2 \
      --correct defer --incorrect using --incorrect yield`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.NewCourseIDFromString(courseID)
			if err != nil {
				return fmt.Errorf("invalid course id %q", courseID)
			}
			category, err := domain.ParseCategory(taskType)
			if err != nil {
				return err
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Service.AddTask(cmd.Context(), course.AddTaskRequest{
				CourseID:  id,
				Category:  category,
				Statement: statement,
				Position:  order,
				Options:   buildOptions(correct, incorrect),
			})
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s task %q at order %d (%s)\n",
				task.Category(), task.Statement(), task.Position(), task.ID())
			return nil
		},
	}
	addCmd.Flags().StringVar(&courseID, "course", "", "course id")
	addCmd.Flags().StringVar(&taskType, "type", "", "open_text, single_choice or multiple_choice")
	addCmd.Flags().StringVar(&statement, "statement", "", "task statement")
	addCmd.Flags().IntVar(&order, "order", 0, "1-based position in the course")
	addCmd.Flags().StringArrayVar(&correct, "correct", nil, "correct option (repeatable)")
	addCmd.Flags().StringArrayVar(&incorrect, "incorrect", nil, "incorrect option (repeatable)")
	for _, f := range []string{"course", "type", "statement", "order"} {
		_ = addCmd.MarkFlagRequired(f)
	}

	taskCmd.AddCommand(addCmd)
	return taskCmd
}

// buildOptions lists correct options first; nil when none were given
func buildOptions(correct, incorrect []string) []domain.TaskOption {
	if len(correct)+len(incorrect) == 0 {
		return nil
	}
	options := make([]domain.TaskOption, 0, len(correct)+len(incorrect))
	for _, text := range correct {
		options = append(options, domain.TaskOption{Text: text, Correct: true})
	}
	for _, text := range incorrect {
		options = append(options, domain.TaskOption{Text: text})
	}
	return options
}

// describeError spells out every field of a validation failure
func describeError(err error) error {
	list := domain.AsValidationErrors(err)
	if len(list) == 0 {
		return err
	}
	if len(list) == 1 {
		return fmt.Errorf("%s: %s", list[0].Field, list[0].Message)
	}
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, v := range list {
		fmt.Fprintf(&b, "\n  %s: %s", v.Field, v.Message)
	}
	return errors.New(b.String())
}
