package majors

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/repositories/mocks"
	"github.com/upb/student-records/services"
	"go.uber.org/zap"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(mocks.MajorRepository)
		svc := NewService(repo, zap.NewNop())

		repo.On("Create", ctx, mock.MatchedBy(func(m *models.Major) bool {
			return m.Name == "Finance"
		})).Return(nil)

		major, err := svc.Create(ctx, MajorInput{Name: "  Finance "})
		require.NoError(t, err)
		assert.Equal(t, "Finance", major.Name)
		repo.AssertExpectations(t)
	})

	t.Run("empty name", func(t *testing.T) {
		repo := new(mocks.MajorRepository)
		svc := NewService(repo, zap.NewNop())

		_, err := svc.Create(ctx, MajorInput{Name: "   "})
		assert.True(t, services.IsValidationError(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name longer than thirty characters", func(t *testing.T) {
		repo := new(mocks.MajorRepository)
		svc := NewService(repo, zap.NewNop())
		name := "Operations Management & Business Analytics"

		repo.On("Create", ctx, mock.Anything).Return(nil)

		major, err := svc.Create(ctx, MajorInput{Name: name})
		require.NoError(t, err)
		assert.Equal(t, name, major.Name)
	})

	t.Run("name over one hundred characters", func(t *testing.T) {
		repo := new(mocks.MajorRepository)
		svc := NewService(repo, zap.NewNop())

		_, err := svc.Create(ctx, MajorInput{Name: strings.Repeat("a", 101)})
		assert.True(t, services.IsValidationError(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(mocks.MajorRepository)
		svc := NewService(repo, zap.NewNop())

		repo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate))

		_, err := svc.Create(ctx, MajorInput{Name: "Finance"})
		assert.ErrorIs(t, err, services.ErrDuplicateMajor)
		assert.True(t, services.IsConflictError(err))
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MajorRepository)
	svc := NewService(repo, zap.NewNop())

	repo.On("List", ctx).Return([]*models.Major{{ID: 1, Name: "Accounting"}}, nil)

	majors, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, majors, 1)
	assert.Equal(t, "Accounting", majors[0].Name)
}
