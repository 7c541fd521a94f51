package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"go.uber.org/zap"
)

const studentColumns = `
		s.student_id, s.first_name, s.last_name, s.email, s.major_id,
		s.birth_date, s.num_credits_completed, s.gpa, s.is_honors,
		COALESCE(m.major, '')`

// StudentRepository implements the repositories.StudentRepository interface
type StudentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *DB, logger *zap.Logger) repositories.StudentRepository {
	return &StudentRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	var majorID sql.NullInt64

	err := row.Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&majorID,
		&student.BirthDate,
		&student.NumCreditsCompleted,
		&student.GPA,
		&student.IsHonors,
		&student.MajorName,
	)
	if err != nil {
		return nil, err
	}

	if majorID.Valid {
		id := majorID.Int64
		student.MajorID = &id
	}
	return student, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO student (first_name, last_name, email, major_id, birth_date, num_credits_completed, gpa, is_honors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING student_id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		student.FirstName,
		student.LastName,
		student.Email,
		nullableID(student.MajorID),
		student.BirthDate,
		student.NumCreditsCompleted,
		student.GPA,
		student.IsHonors,
	).Scan(&student.ID)
	if err != nil {
		return translateError("failed to create student", err)
	}

	r.logger.Debug("student created", zap.Int64("student_id", student.ID))
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM student s
		LEFT JOIN major m ON m.major_id = s.major_id
		WHERE s.student_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	student, err := scanStudent(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("student %d", id), err)
	}
	return student, nil
}

// GetByEmail retrieves a student by email, ignoring case. Emails are unique
// under student_email_key.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM student s
		LEFT JOIN major m ON m.major_id = s.major_id
		WHERE LOWER(s.email) = LOWER($1)
	`

	executor := GetExecutor(ctx, r.db)
	student, err := scanStudent(executor.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, translateError("student for email "+email, err)
	}
	return student, nil
}

// List retrieves all students
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM student s
		LEFT JOIN major m ON m.major_id = s.major_id
		ORDER BY s.last_name, s.first_name, s.student_id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// Update updates a student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE student
		SET first_name = $2,
		    last_name = $3,
		    email = $4,
		    major_id = $5,
		    birth_date = $6,
		    num_credits_completed = $7,
		    gpa = $8,
		    is_honors = $9
		WHERE student_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		student.ID,
		student.FirstName,
		student.LastName,
		student.Email,
		nullableID(student.MajorID),
		student.BirthDate,
		student.NumCreditsCompleted,
		student.GPA,
		student.IsHonors,
	)
	if err != nil {
		return translateError("failed to update student", err)
	}

	if err := requireAffected(fmt.Sprintf("student %d", student.ID), result); err != nil {
		return err
	}

	r.logger.Debug("student updated", zap.Int64("student_id", student.ID))
	return nil
}

// Delete deletes a student
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM student WHERE student_id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if err := requireAffected(fmt.Sprintf("student %d", id), result); err != nil {
		return err
	}

	r.logger.Debug("student deleted", zap.Int64("student_id", id))
	return nil
}
