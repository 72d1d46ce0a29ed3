package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <manifest.yaml>",
		Short: "Create a course and its tasks from a YAML manifest",
		Long: `Import replays a manifest: it creates the course, adds each task in file
order and publishes the course when the manifest sets publish: true. It stops
at the first task that fails; everything created before it is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := course.LoadManifest(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Service.ImportManifest(cmd.Context(), manifest)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Course %q (%s): %d task(s) added, status %s\n",
					result.Course.Title, result.Course.ID, len(result.Tasks), result.Course.Status())
			}
			if err != nil {
				return describeError(err)
			}
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <instructor-id>",
		Short: "Summarize an instructor's courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.NewUserIDFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid instructor id %q", args[0])
			}

			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.InstructorReport(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTASKS\tCATEGORIES")
			for _, item := range report.Courses {
				categories := "-"
				if len(item.Categories) > 0 {
					names := make([]string, 0, len(item.Categories))
					for _, c := range item.Categories {
						names = append(names, c.String())
					}
					categories = strings.Join(names, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", item.CourseID, item.Title, item.Status, item.TaskCount, categories)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPublished courses: %d\n", report.TotalPublished)
			return nil
		},
	}
}
