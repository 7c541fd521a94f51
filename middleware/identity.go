package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/models"
	"go.uber.org/zap"
)

// UserResolver resolves the user behind a request's session cookie
type UserResolver interface {
	ResolveCurrentUser(r *http.Request) (*models.User, error)
}

// LoadUser resolves the session once per request and stores the user in the
// context. A failing session store leaves the request anonymous.
func LoadUser(resolver UserResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.ResolveCurrentUser(r)
			if err != nil {
				logger.Error("failed to resolve current user",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), user)))
		})
	}
}
