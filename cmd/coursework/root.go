package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coursework/internal/api"
	"github.com/felixgeelhaar/coursework/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coursework",
		Short:         "Author courses made of ordered tasks",
		Long:          `Coursework creates courses, adds open text and choice tasks in order, and publishes a course once its sequence is complete.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUserCmd(),
		newCourseCmd(),
		newTaskCmd(),
		newImportCmd(),
		newReportCmd(),
		newEventsCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursework %s\n", Version)
		},
	}
}

// openApp loads ~/.coursework settings and opens the configured store. The
// caller must Close the returned app.
func openApp(ctx context.Context) (*api.App, error) {
	dir, err := config.EnsureCourseworkDir()
	if err != nil {
		return nil, fmt.Errorf("ensure coursework dir: %w", err)
	}
	local, err := config.LoadLocalConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := config.ParseLogLevel(local.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := &config.Config{
		StorageDriver: strings.ToLower(local.Storage.Driver),
		SQLitePath:    local.ResolveSQLitePath(dir),
		DatabaseURL:   local.Storage.DatabaseURL,
		LogLevel:      local.Log.Level,
	}
	if local.Events.Enabled {
		cfg.RabbitMQURL = local.Events.RabbitMQURL
	}
	switch {
	case cfg.StorageDriver == config.DriverPostgres && cfg.DatabaseURL == "":
		return nil, fmt.Errorf("postgres storage needs database_url in %s", filepath.Join(dir, "secrets.yaml"))
	case cfg.StorageDriver != config.DriverPostgres && cfg.StorageDriver != config.DriverSQLite:
		return nil, fmt.Errorf("unknown storage driver %q", local.Storage.Driver)
	}

	app, err := api.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}
