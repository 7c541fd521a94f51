package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/upb/student-records/internal/auth"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
)

// PasswordHasher hashes and verifies passwords. NeedsRehash reports whether
// a stored hash should be replaced with a fresh one from Hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
	NeedsRehash(hash string) bool
}

// UserInput is the create-user form
type UserInput struct {
	Username  string `form:"username" validate:"required,max=50"`
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=50"`
	Email     string `form:"email" validate:"required,email,max=120"`
	Password  string `form:"password" validate:"required,min=6,max=72"`
	Role      string `form:"role" validate:"required"`
}

// Service implements account operations: authentication and user management
type Service struct {
	users  repositories.UserRepository
	hasher PasswordHasher
	logger *zap.Logger
}

// NewService creates a new account service
func NewService(users repositories.UserRepository, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords produce the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, services.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("login failed: unknown user", zap.String("username", username))
			return nil, services.ErrInvalidCredentials
		}
		return nil, services.WrapInternal("failed to load user", err)
	}

	if err := s.hasher.Verify(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrUnsupportedHash) {
			s.logger.Warn("stored password hash has an unsupported format", zap.Int64("user_id", user.ID))
		} else {
			s.logger.Info("login failed: bad password", zap.Int64("user_id", user.ID))
		}
		return nil, services.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.Password) {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

// rehash upgrades a legacy or weaker stored hash after a successful login.
// Failures are logged and do not block the login.
func (s *Service) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn("failed to store rehashed password", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	user.Password = hash
	s.logger.Info("password hash upgraded", zap.Int64("user_id", user.ID))
}

// GetByID returns a user by id
func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, services.FromRepository(err, services.ErrUserNotFound, nil)
	}
	return user, nil
}

// List returns every user ordered by username
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	return users, nil
}

// Create validates the form, hashes the password and inserts the user
func (s *Service) Create(ctx context.Context, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if err := utils.ValidateStruct(&in); err != nil {
		return nil, services.ErrInvalidInput.Wrap(err)
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, services.ErrInvalidRole.Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.Username, in.Email, in.FirstName, in.LastName, hash, role)
	if err := s.users.Create(ctx, user); err != nil {
		conflict := services.ErrDuplicateUsername
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) && dup.Constraint == repositories.ConstraintUserEmail {
			conflict = services.ErrDuplicateEmail
		}
		return nil, services.FromRepository(err, nil, conflict)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)
	return user, nil
}

// Delete removes a user. Users cannot delete their own account.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor != nil && actor.ID == id {
		return nil, services.ErrCannotDeleteSelf
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, services.FromRepository(err, services.ErrUserNotFound, nil)
	}

	fields := []zap.Field{zap.Int64("user_id", id)}
	if actor != nil {
		fields = append(fields, zap.Int64("deleted_by", actor.ID))
	}
	s.logger.Info("user deleted", fields...)
	return user, nil
}
