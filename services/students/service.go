package students

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
)

// StudentInput is the create/edit form. Credits and GPA are not part of it.
type StudentInput struct {
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=50"`
	Email     string `form:"email" validate:"required,email,max=120"`
	MajorID   string `form:"major_id" validate:"omitempty,numeric"`
	BirthDate string `form:"birth_date" validate:"required,isodate"`
	IsHonors  bool   `form:"is_honors"`
}

// normalize trims surrounding whitespace from every text field
func (in *StudentInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.MajorID = strings.TrimSpace(in.MajorID)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
}

// Service implements student record operations
type Service struct {
	students repositories.StudentRepository
	majors   repositories.MajorRepository
	logger   *zap.Logger
}

// NewService creates a new student service
func NewService(students repositories.StudentRepository, majors repositories.MajorRepository, logger *zap.Logger) *Service {
	return &Service{
		students: students,
		majors:   majors,
		logger:   logger,
	}
}

// List returns every student ordered by name
func (s *Service) List(ctx context.Context) ([]*models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list students", err)
	}
	return students, nil
}

// Get returns a student by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, services.FromRepository(err, services.ErrStudentNotFound, nil)
	}
	return student, nil
}

// GetByEmail returns the student record linked to an email address
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	if strings.TrimSpace(email) == "" {
		return nil, services.ErrStudentNotFound
	}
	student, err := s.students.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, services.FromRepository(err, services.ErrStudentNotFound, nil)
	}
	return student, nil
}

// Create validates the form and inserts a new student with zero credits and GPA
func (s *Service) Create(ctx context.Context, in StudentInput) (*models.Student, error) {
	majorID, birthDate, err := s.parse(ctx, &in)
	if err != nil {
		return nil, err
	}

	student := models.NewStudent(in.FirstName, in.LastName, in.Email, majorID, birthDate, in.IsHonors)
	if err := s.students.Create(ctx, student); err != nil {
		return nil, services.FromRepository(err, nil, services.ErrDuplicateEmail)
	}

	s.logger.Info("student created",
		zap.Int64("student_id", student.ID),
		zap.String("name", student.FullName()),
	)
	return student, nil
}

// Update applies the form to an existing student. Credits and GPA are kept.
func (s *Service) Update(ctx context.Context, id int64, in StudentInput) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	majorID, birthDate, err := s.parse(ctx, &in)
	if err != nil {
		return nil, err
	}

	student.FirstName = in.FirstName
	student.LastName = in.LastName
	student.Email = in.Email
	student.MajorID = majorID
	student.BirthDate = birthDate
	student.IsHonors = in.IsHonors

	if err := s.students.Update(ctx, student); err != nil {
		return nil, services.FromRepository(err, services.ErrStudentNotFound, services.ErrDuplicateEmail)
	}

	s.logger.Info("student updated", zap.Int64("student_id", student.ID))
	return student, nil
}

// Delete removes a student. A missing id is reported and nothing changes.
func (s *Service) Delete(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return nil, services.FromRepository(err, services.ErrStudentNotFound, nil)
	}

	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return student, nil
}

// parse validates the input and resolves the major and birth date
func (s *Service) parse(ctx context.Context, in *StudentInput) (*int64, time.Time, error) {
	in.normalize()

	if err := utils.ValidateStruct(in); err != nil {
		return nil, time.Time{}, services.ErrInvalidInput.Wrap(err)
	}

	birthDate, err := time.Parse(models.BirthDateLayout, in.BirthDate)
	if err != nil {
		return nil, time.Time{}, services.ErrInvalidBirthDate.Wrap(err)
	}

	if in.MajorID == "" {
		return nil, birthDate, nil
	}

	id, err := strconv.ParseInt(in.MajorID, 10, 64)
	if err != nil {
		return nil, time.Time{}, services.ErrUnknownMajor.Wrap(err)
	}
	if _, err := s.majors.GetByID(ctx, id); err != nil {
		return nil, time.Time{}, services.FromRepository(err, services.ErrUnknownMajor, nil)
	}
	return &id, birthDate, nil
}
