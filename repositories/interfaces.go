package repositories

import (
	"context"
	"errors"

	"github.com/upb/student-records/models"
)

var (
	// ErrNotFound is wrapped by repositories when no row matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped by repositories when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// Unique constraint names created by the schema
const (
	ConstraintMajorName    = "major_name_key"
	ConstraintStudentEmail = "student_email_key"
	ConstraintUsername     = "user_username_key"
	ConstraintUserEmail    = "user_email_key"
)

// DuplicateError reports a unique constraint violation. It matches
// ErrDuplicate under errors.Is; use errors.As to read the constraint.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	if e.Constraint == "" {
		return ErrDuplicate.Error()
	}
	return ErrDuplicate.Error() + " (" + e.Constraint + ")"
}

// Is reports whether target is ErrDuplicate
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// StudentRepository handles student data operations
type StudentRepository interface {
	// Create inserts a student and sets its generated ID
	Create(ctx context.Context, student *models.Student) error

	// GetByID retrieves a student by ID, with the major name joined in
	GetByID(ctx context.Context, id int64) (*models.Student, error)

	// GetByEmail retrieves a student by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)

	// List retrieves every student ordered by last name, first name
	List(ctx context.Context) ([]*models.Student, error)

	// Update updates a student
	Update(ctx context.Context, student *models.Student) error

	// Delete deletes a student
	Delete(ctx context.Context, id int64) error
}

// MajorRepository handles major data operations
type MajorRepository interface {
	// Create inserts a major and sets its generated ID
	Create(ctx context.Context, major *models.Major) error

	// GetByID retrieves a major by ID
	GetByID(ctx context.Context, id int64) (*models.Major, error)

	// List retrieves every major ordered by name
	List(ctx context.Context) ([]*models.Major, error)
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a user and sets its generated ID
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// List retrieves every user ordered by username
	List(ctx context.Context) ([]*models.User, error)

	// UpdatePassword replaces a user's stored password hash
	UpdatePassword(ctx context.Context, id int64, hash string) error

	// Delete deletes a user
	Delete(ctx context.Context, id int64) error
}

// SchemaManager creates and drops the application tables
type SchemaManager interface {
	InitSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Students StudentRepository
	Majors   MajorRepository
	Users    UserRepository
}
