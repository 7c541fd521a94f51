// Package mocks holds testify mocks of the repository interfaces for service
// and handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
)

// StudentRepository is a mock implementation of repositories.StudentRepository
type StudentRepository struct {
	mock.Mock
}

func (m *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	args := m.Called(ctx, email)
	if s := args.Get(0); s != nil {
		return s.(*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *StudentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MajorRepository is a mock implementation of repositories.MajorRepository
type MajorRepository struct {
	mock.Mock
}

func (m *MajorRepository) Create(ctx context.Context, major *models.Major) error {
	args := m.Called(ctx, major)
	return args.Error(0)
}

func (m *MajorRepository) GetByID(ctx context.Context, id int64) (*models.Major, error) {
	args := m.Called(ctx, id)
	if mj := args.Get(0); mj != nil {
		return mj.(*models.Major), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MajorRepository) List(ctx context.Context) ([]*models.Major, error) {
	args := m.Called(ctx)
	if mj := args.Get(0); mj != nil {
		return mj.([]*models.Major), args.Error(1)
	}
	return nil, args.Error(1)
}

// UserRepository is a mock implementation of repositories.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TransactionManager is a mock implementation of repositories.TransactionManager
type TransactionManager struct {
	mock.Mock
}

func (m *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

// InTransaction runs fn against the mock Transaction configured as the first
// return value, committing it on success and rolling it back on error. A
// non-nil second return value fails before fn runs.
func (m *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx)
	if err := args.Error(1); err != nil {
		return err
	}
	tx := args.Get(0).(repositories.Transaction)
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Transaction is a mock implementation of repositories.Transaction
type Transaction struct {
	mock.Mock
}

func (m *Transaction) Commit() error {
	return m.Called().Error(0)
}

func (m *Transaction) Rollback() error {
	return m.Called().Error(0)
}

func (m *Transaction) Context() context.Context {
	return m.Called().Get(0).(context.Context)
}

// SchemaManager is a mock implementation of repositories.SchemaManager
type SchemaManager struct {
	mock.Mock
}

func (m *SchemaManager) InitSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *SchemaManager) DropSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
