// Command seed drops and recreates the schema, then loads the stock majors,
// demo accounts and their student records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/upb/student-records/config"
	internalauth "github.com/upb/student-records/internal/auth"
	"github.com/upb/student-records/internal/observability"
	"github.com/upb/student-records/repositories/postgres"
	"github.com/upb/student-records/services/seed"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = factory.Close() }()

	return seedDatabase(ctx, factory, logger)
}

func seedDatabase(ctx context.Context, factory *postgres.RepositoryFactory, logger *zap.Logger) error {
	svc := seed.NewService(
		factory.GetSchemaManager(),
		factory.GetTransactionManager(),
		factory.NewRepositories(),
		internalauth.NewHasher(0),
		logger,
	)

	if err := svc.Run(ctx, seed.DefaultData()); err != nil {
		return err
	}
	logger.Info("database seeded")
	return nil
}
