package middleware

import (
	"context"

	"github.com/upb/student-records/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// CurrentUserKey is the context key for the logged-in user
	CurrentUserKey contextKey = "current_user"
)

// WithCurrentUser adds the logged-in user to the context
func WithCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, CurrentUserKey, user)
}

// CurrentUser retrieves the logged-in user from context, nil when anonymous
func CurrentUser(ctx context.Context) *models.User {
	if val := ctx.Value(CurrentUserKey); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentRole returns the role of the logged-in user, or PUBLIC when anonymous
func CurrentRole(ctx context.Context) models.Role {
	if user := CurrentUser(ctx); user != nil {
		return user.Role
	}
	return models.RolePublic
}
