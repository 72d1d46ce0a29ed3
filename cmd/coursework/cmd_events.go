package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coursework/internal/config"
	"github.com/felixgeelhaar/coursework/internal/queue"
)

func newEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect course events",
	}

	var bindingKey string
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print course events as they are published",
		Long: `Tail binds a private queue to the events exchange and prints every
matching event as one JSON line until interrupted. It does not consume from
the durable course events queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := config.LoadLocalConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if local.Events.RabbitMQURL == "" {
				return fmt.Errorf("no rabbitmq_url configured in ~/.coursework/secrets.yaml")
			}

			conn, err := queue.NewConnection(local.Events.RabbitMQURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			consumer := queue.NewConsumer(conn, func(_ context.Context, msg *queue.EventMessage) error {
				return enc.Encode(msg)
			}, queue.ConsumerConfig{BindingKey: bindingKey})

			if err := consumer.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Tailing %s (%s), Ctrl-C to stop\n", queue.EventsExchange, bindingKey)

			<-ctx.Done()
			consumer.Stop()
			return nil
		},
	}
	tailCmd.Flags().StringVar(&bindingKey, "filter", queue.CourseRouting, "routing key pattern, e.g. course.published")

	eventsCmd.AddCommand(tailCmd)
	return eventsCmd
}
