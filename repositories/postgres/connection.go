package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/student-records/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return Wrap(db, logger), nil
}

// Wrap adapts an already opened *sql.DB
func Wrap(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     db,
		logger: logger,
	}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

const schemaSQL = `
		CREATE TABLE IF NOT EXISTS major (
			major_id SERIAL PRIMARY KEY,
			major VARCHAR(100) NOT NULL,
			CONSTRAINT major_name_key UNIQUE (major)
		);

		CREATE TABLE IF NOT EXISTS student (
			student_id SERIAL PRIMARY KEY,
			first_name VARCHAR(30) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(120) NOT NULL,
			major_id INTEGER REFERENCES major(major_id),
			birth_date TIMESTAMP NOT NULL,
			num_credits_completed INTEGER NOT NULL DEFAULT 0,
			gpa DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_honors BOOLEAN NOT NULL DEFAULT false
		);

		CREATE TABLE IF NOT EXISTS "user" (
			user_id SERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL,
			first_name VARCHAR(30) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(120) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			CONSTRAINT user_username_key UNIQUE (username),
			CONSTRAINT user_email_key UNIQUE (email)
		);

		CREATE INDEX IF NOT EXISTS idx_student_major_id ON student(major_id);
		CREATE UNIQUE INDEX IF NOT EXISTS student_email_key ON student(LOWER(email));
	`

// InitSchema creates the student, major and user tables
func (db *DB) InitSchema(ctx context.Context) error {
	executor := GetExecutor(ctx, db)
	if _, err := executor.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}

// DropSchema drops every application table
func (db *DB) DropSchema(ctx context.Context) error {
	executor := GetExecutor(ctx, db)
	if _, err := executor.ExecContext(ctx, `DROP TABLE IF EXISTS student, major, "user" CASCADE`); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	db.logger.Info("database schema dropped")
	return nil
}
