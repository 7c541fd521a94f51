package majors

import (
	"context"
	"strings"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
)

// MajorInput is the create-major form
type MajorInput struct {
	Name string `form:"major" validate:"required,max=100"`
}

// Service implements major operations
type Service struct {
	majors repositories.MajorRepository
	logger *zap.Logger
}

// NewService creates a new major service
func NewService(majors repositories.MajorRepository, logger *zap.Logger) *Service {
	return &Service{majors: majors, logger: logger}
}

// List returns every major ordered by name
func (s *Service) List(ctx context.Context) ([]*models.Major, error) {
	majors, err := s.majors.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list majors", err)
	}
	return majors, nil
}

// Create adds a major. Names are unique.
func (s *Service) Create(ctx context.Context, in MajorInput) (*models.Major, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, services.ErrInvalidInput.Wrap(err)
	}

	major := models.NewMajor(in.Name)
	if err := s.majors.Create(ctx, major); err != nil {
		return nil, services.FromRepository(err, nil, services.ErrDuplicateMajor)
	}

	s.logger.Info("major created", zap.Int64("major_id", major.ID), zap.String("major", major.Name))
	return major, nil
}
