package postgres

import (
	"context"
	"fmt"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"go.uber.org/zap"
)

// MajorRepository implements the repositories.MajorRepository interface
type MajorRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMajorRepository creates a new major repository
func NewMajorRepository(db *DB, logger *zap.Logger) repositories.MajorRepository {
	return &MajorRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new major
func (r *MajorRepository) Create(ctx context.Context, major *models.Major) error {
	query := `INSERT INTO major (major) VALUES ($1) RETURNING major_id`

	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, major.Name).Scan(&major.ID); err != nil {
		return translateError("failed to create major", err)
	}

	r.logger.Debug("major created", zap.Int64("major_id", major.ID), zap.String("major", major.Name))
	return nil
}

// GetByID retrieves a major by ID
func (r *MajorRepository) GetByID(ctx context.Context, id int64) (*models.Major, error) {
	query := `SELECT major_id, major FROM major WHERE major_id = $1`

	executor := GetExecutor(ctx, r.db)
	major := &models.Major{}
	if err := executor.QueryRowContext(ctx, query, id).Scan(&major.ID, &major.Name); err != nil {
		return nil, translateError(fmt.Sprintf("major %d", id), err)
	}
	return major, nil
}

// List retrieves all majors
func (r *MajorRepository) List(ctx context.Context) ([]*models.Major, error) {
	query := `SELECT major_id, major FROM major ORDER BY major`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query majors: %w", err)
	}
	defer rows.Close()

	var majors []*models.Major
	for rows.Next() {
		major := &models.Major{}
		if err := rows.Scan(&major.ID, &major.Name); err != nil {
			return nil, fmt.Errorf("failed to scan major: %w", err)
		}
		majors = append(majors, major)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating major rows: %w", err)
	}

	return majors, nil
}
