package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/coursework/internal/config"
	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/queue"
	"github.com/felixgeelhaar/coursework/internal/repository"
	"github.com/felixgeelhaar/coursework/internal/storage/sqlite"
)

// App holds all application dependencies
type App struct {
	Config  *config.Config
	Service *course.Service
	Logger  *slog.Logger

	// Ready reports whether the backing store answers
	Ready func(ctx context.Context) error

	closers []func() error
}

// NewApp opens the configured store, runs migrations and wires the course
// service. When RabbitMQURL is set, course events are published there.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = course.NewService(store, logger)

	if cfg.RabbitMQURL != "" {
		conn, err := queue.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		app.closers = append(app.closers, conn.Close)

		pcfg := queue.DefaultProducerConfig()
		pcfg.Logger = logger
		app.Service.SetPublisher(queue.NewProducer(conn, pcfg))
	}

	return app, nil
}

func (a *App) openStore(ctx context.Context) (course.Store, error) {
	switch a.Config.StorageDriver {
	case config.DriverPostgres:
		db, err := repository.OpenSQL(ctx, a.Config.DatabaseURL)
		if err != nil {
			return course.Store{}, err
		}
		a.closers = append(a.closers, db.Close)
		if err := repository.Migrate(ctx, db); err != nil {
			return course.Store{}, fmt.Errorf("migrate postgres: %w", err)
		}

		pool, err := repository.OpenPool(ctx, a.Config.DatabaseURL)
		if err != nil {
			return course.Store{}, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.Ready = pool.Ping
		return repository.NewStore(pool, db), nil

	default:
		db, err := sqlite.Open(a.Config.SQLitePath)
		if err != nil {
			return course.Store{}, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return course.Store{}, fmt.Errorf("migrate sqlite: %w", err)
		}
		a.Ready = db.PingContext
		return sqlite.NewStore(db), nil
	}
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
