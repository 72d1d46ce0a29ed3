package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var name, email, role string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Service.RegisterUser(cmd.Context(), course.RegisterUserRequest{
				Name:  name,
				Email: email,
				Role:  role,
			})
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "user name")
	addCmd.Flags().StringVar(&email, "email", "", "user email")
	addCmd.Flags().StringVar(&role, "role", "STUDENT", "STUDENT or INSTRUCTOR")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("email")

	userCmd.AddCommand(addCmd)
	return userCmd
}

func newCourseCmd() *cobra.Command {
	courseCmd := &cobra.Command{
		Use:   "course",
		Short: "Create, inspect and publish courses",
	}
	courseCmd.AddCommand(newCourseCreateCmd(), newCourseListCmd(), newCourseShowCmd(), newCoursePublishCmd())
	return courseCmd
}

func newCourseCreateCmd() *cobra.Command {
	var title, description, instructor string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course in BUILDING status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			c, err := app.Service.CreateCourse(cmd.Context(), course.CreateCourseRequest{
				Title:           title,
				Description:     description,
				InstructorEmail: instructor,
			})
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created course %q (%s)\n", c.Title, c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "course title")
	cmd.Flags().StringVar(&description, "description", "", "course description")
	cmd.Flags().StringVar(&instructor, "instructor", "", "instructor email")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("instructor")
	return cmd
}

func newCourseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			courses, err := app.Service.ListCourses(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTASKS")
			for _, c := range courses {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Title, c.Status(), c.TaskCount())
			}
			return w.Flush()
		},
	}
}

func newCourseShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <course-id>",
		Short: "Show a course and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.NewCourseIDFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q", args[0])
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			c, err := app.Service.GetCourse(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}
			return printCourse(cmd.OutOrStdout(), c)
		},
	}
}

func newCoursePublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <course-id>",
		Short: "Publish a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.NewCourseIDFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid course id %q", args[0])
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			c, err := app.Service.PublishCourse(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %q at %s\n", c.Title, c.PublishedAt().Format(time.RFC3339))
			return nil
		},
	}
}

func printCourse(out io.Writer, c *domain.Course) error {
	fmt.Fprintf(out, "%s\n", c.Title)
	fmt.Fprintf(out, "  id:     %s\n", c.ID)
	fmt.Fprintf(out, "  status: %s\n", c.Status())
	if at := c.PublishedAt(); at != nil {
		fmt.Fprintf(out, "  published: %s\n", at.Format(time.RFC3339))
	}
	if c.TaskCount() == 0 {
		fmt.Fprintln(out, "  no tasks")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nORDER\tTYPE\tSTATEMENT\tOPTIONS")
	for _, t := range c.Tasks() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Position(), t.Category(), t.Statement(), formatOptions(t.Options()))
	}
	return w.Flush()
}

func formatOptions(options []domain.TaskOption) string {
	if len(options) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(options))
	for _, o := range options {
		mark := " "
		if o.Correct {
			mark = "*"
		}
		parts = append(parts, "["+mark+"] "+o.Text)
	}
	return strings.Join(parts, ", ")
}
