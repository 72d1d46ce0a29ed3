package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/felixgeelhaar/coursework/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the authoring tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := mcpserver.NewServer(mcpserver.Config{Service: app.Service, Version: Version})
			return srv.ServeStdio(ctx)
		},
	}
}
