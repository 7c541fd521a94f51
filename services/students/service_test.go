package students

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/repositories/mocks"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
)

func newTestService() (*Service, *mocks.StudentRepository, *mocks.MajorRepository) {
	studentRepo := new(mocks.StudentRepository)
	majorRepo := new(mocks.MajorRepository)
	return NewService(studentRepo, majorRepo, zap.NewNop()), studentRepo, majorRepo
}

func validInput() StudentInput {
	return StudentInput{
		FirstName: " Imma ",
		LastName:  "Student",
		Email:     "student@umd.edu",
		MajorID:   "2",
		BirthDate: "2001-09-30",
		IsHonors:  true,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with zero credits and gpa", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()

		majorRepo.On("GetByID", ctx, int64(2)).Return(&models.Major{ID: 2, Name: "Finance"}, nil)
		studentRepo.On("Create", ctx, mock.AnythingOfType("*models.Student")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Student).ID = 11
			}).
			Return(nil)

		student, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, int64(11), student.ID)
		assert.Equal(t, "Imma", student.FirstName)
		assert.Equal(t, "Student", student.LastName)
		require.NotNil(t, student.MajorID)
		assert.Equal(t, int64(2), *student.MajorID)
		assert.Equal(t, time.Date(2001, 9, 30, 0, 0, 0, 0, time.UTC), student.BirthDate)
		assert.True(t, student.IsHonors)
		assert.Equal(t, 0, student.NumCreditsCompleted)
		assert.Equal(t, 0.0, student.GPA)
		studentRepo.AssertExpectations(t)
		majorRepo.AssertExpectations(t)
	})

	t.Run("no major", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()
		in := validInput()
		in.MajorID = ""

		studentRepo.On("Create", ctx, mock.AnythingOfType("*models.Student")).Return(nil)

		student, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Nil(t, student.MajorID)
		majorRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("validation errors are reported per field", func(t *testing.T) {
		svc, studentRepo, _ := newTestService()
		in := validInput()
		in.FirstName = ""
		in.BirthDate = "30/09/2001"

		_, err := svc.Create(ctx, in)
		require.Error(t, err)
		assert.True(t, services.IsValidationError(err))
		messages := utils.GetValidationMessages(err)
		assert.Equal(t, []string{"First name is required", "Birth date must use the format YYYY-MM-DD"}, messages)
		studentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("first name too long", func(t *testing.T) {
		svc, _, _ := newTestService()
		in := validInput()
		in.FirstName = "abcdefghijklmnopqrstuvwxyzabcde"

		_, err := svc.Create(ctx, in)
		assert.True(t, services.IsValidationError(err))
	})

	t.Run("unknown major", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()

		majorRepo.On("GetByID", ctx, int64(2)).Return(nil, fmt.Errorf("major 2: %w", repositories.ErrNotFound))

		_, err := svc.Create(ctx, validInput())
		assert.ErrorIs(t, err, services.ErrUnknownMajor)
		assert.True(t, services.IsValidationError(err))
		studentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email already on file", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()

		majorRepo.On("GetByID", ctx, int64(2)).Return(&models.Major{ID: 2}, nil)
		studentRepo.On("Create", ctx, mock.Anything).
			Return(fmt.Errorf("failed to create student: %w", &repositories.DuplicateError{Constraint: repositories.ConstraintStudentEmail}))

		_, err := svc.Create(ctx, validInput())
		assert.ErrorIs(t, err, services.ErrDuplicateEmail)
		assert.Equal(t, "That email address is already registered.", services.UserMessage(err))
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()

		majorRepo.On("GetByID", ctx, int64(2)).Return(&models.Major{ID: 2}, nil)
		studentRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := svc.Create(ctx, validInput())
		assert.True(t, services.IsInternalError(err))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc, studentRepo, _ := newTestService()

	studentRepo.On("GetByID", ctx, int64(1)).Return(&models.Student{ID: 1, FirstName: "Imma"}, nil)
	studentRepo.On("GetByID", ctx, int64(2)).Return(nil, fmt.Errorf("student 2: %w", repositories.ErrNotFound))

	student, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Imma", student.FirstName)

	_, err = svc.Get(ctx, 2)
	assert.ErrorIs(t, err, services.ErrStudentNotFound)
	assert.Equal(t, "Student not found.", services.UserMessage(err))
}

func TestService_GetByEmail(t *testing.T) {
	ctx := context.Background()
	svc, studentRepo, _ := newTestService()

	studentRepo.On("GetByEmail", ctx, "Student@umd.edu").Return(&models.Student{ID: 4}, nil)

	student, err := svc.GetByEmail(ctx, " Student@umd.edu ")
	require.NoError(t, err)
	assert.Equal(t, int64(4), student.ID)

	_, err = svc.GetByEmail(ctx, "")
	assert.ErrorIs(t, err, services.ErrStudentNotFound)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps credits and gpa, honors unchecked clears flag", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()
		existing := &models.Student{ID: 3, FirstName: "Old", NumCreditsCompleted: 45, GPA: 3.2, IsHonors: true}
		in := validInput()
		in.IsHonors = false

		studentRepo.On("GetByID", ctx, int64(3)).Return(existing, nil)
		majorRepo.On("GetByID", ctx, int64(2)).Return(&models.Major{ID: 2}, nil)
		studentRepo.On("Update", ctx, existing).Return(nil)

		student, err := svc.Update(ctx, 3, in)
		require.NoError(t, err)
		assert.Equal(t, "Imma", student.FirstName)
		assert.Equal(t, 45, student.NumCreditsCompleted)
		assert.Equal(t, 3.2, student.GPA)
		assert.False(t, student.IsHonors)
		studentRepo.AssertExpectations(t)
	})

	t.Run("missing student", func(t *testing.T) {
		svc, studentRepo, _ := newTestService()

		studentRepo.On("GetByID", ctx, int64(8)).Return(nil, repositories.ErrNotFound)

		_, err := svc.Update(ctx, 8, validInput())
		assert.ErrorIs(t, err, services.ErrStudentNotFound)
		studentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("email taken by another student", func(t *testing.T) {
		svc, studentRepo, majorRepo := newTestService()
		existing := &models.Student{ID: 3, FirstName: "Old"}

		studentRepo.On("GetByID", ctx, int64(3)).Return(existing, nil)
		majorRepo.On("GetByID", ctx, int64(2)).Return(&models.Major{ID: 2}, nil)
		studentRepo.On("Update", ctx, existing).
			Return(fmt.Errorf("failed to update student: %w", &repositories.DuplicateError{Constraint: repositories.ConstraintStudentEmail}))

		_, err := svc.Update(ctx, 3, validInput())
		assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing id removes exactly that row", func(t *testing.T) {
		svc, studentRepo, _ := newTestService()

		studentRepo.On("GetByID", ctx, int64(5)).Return(&models.Student{ID: 5, FirstName: "Zoe", LastName: "Paidas"}, nil)
		studentRepo.On("Delete", ctx, int64(5)).Return(nil).Once()

		student, err := svc.Delete(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Zoe Paidas", student.FullName())
		studentRepo.AssertNumberOfCalls(t, "Delete", 1)
		studentRepo.AssertCalled(t, "Delete", ctx, int64(5))
	})

	t.Run("missing id mutates nothing", func(t *testing.T) {
		svc, studentRepo, _ := newTestService()

		studentRepo.On("GetByID", ctx, int64(99)).Return(nil, repositories.ErrNotFound)

		_, err := svc.Delete(ctx, 99)
		assert.ErrorIs(t, err, services.ErrStudentNotFound)
		studentRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, studentRepo, _ := newTestService()

	studentRepo.On("List", ctx).Return([]*models.Student{{ID: 1}, {ID: 2}}, nil).Once()
	studentRepo.On("List", ctx).Return(nil, errors.New("boom")).Once()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.List(ctx)
	assert.True(t, services.IsInternalError(err))
}
