package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"go.uber.org/zap"
)

// Decision is the outcome of a guard
type Decision struct {
	Allowed         bool
	Unauthenticated bool
	Reason          string
	Err             error
}

// Allow grants access
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses access to a known user
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// DenyUnauthenticated refuses access because nobody is logged in
func DenyUnauthenticated() Decision {
	return Decision{Unauthenticated: true, Reason: "login required"}
}

// Guard decides whether the request in ctx may proceed
type Guard func(ctx context.Context) Decision

// Denier writes the response for a refused request
type Denier interface {
	// Forbidden answers a request whose user lacks permission
	Forbidden(w http.ResponseWriter, r *http.Request)
	// LoginRequired answers a request that needs a logged-in user
	LoginRequired(w http.ResponseWriter, r *http.Request)
}

// Gate wraps handlers with guard chains. It holds no per-request state.
type Gate struct {
	denier Denier
	logger *zap.Logger
}

// NewGate creates a Gate that answers refusals with denier
func NewGate(denier Denier, logger *zap.Logger) *Gate {
	return &Gate{denier: denier, logger: logger}
}

// Require evaluates guards in order. The first denial short-circuits and
// the wrapped handler is not invoked.
func (g *Gate) Require(guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, guard := range guards {
				decision := guard(ctx)
				if decision.Allowed {
					continue
				}
				g.refuse(w, r, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles lets a request through only when the current user holds one
// of roles. Anonymous requests never pass.
func (g *Gate) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return g.Require(RequireRoles(roles...))
}

func (g *Gate) refuse(w http.ResponseWriter, r *http.Request, decision Decision) {
	fields := []zap.Field{
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.String("role", CurrentRole(r.Context()).String()),
		zap.String("reason", decision.Reason),
	}
	if decision.Err != nil {
		g.logger.Error("access check failed", append(fields, zap.Error(decision.Err))...)
	} else {
		g.logger.Info("access denied", fields...)
	}

	if decision.Unauthenticated {
		g.denier.LoginRequired(w, r)
		return
	}
	g.denier.Forbidden(w, r)
}

// Authenticated requires any logged-in user
func Authenticated() Guard {
	return func(ctx context.Context) Decision {
		if CurrentUser(ctx) == nil {
			return DenyUnauthenticated()
		}
		return Allow()
	}
}

// RequireRoles allows the current user iff their role is in roles
func RequireRoles(roles ...models.Role) Guard {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = r.String()
	}
	reason := "role not in [" + strings.Join(allowed, ", ") + "]"

	return func(ctx context.Context) Decision {
		user := CurrentUser(ctx)
		if user == nil || !user.HasRole(roles...) {
			return Deny(reason)
		}
		return Allow()
	}
}

// StudentLocator finds the student record owned by an email address
type StudentLocator interface {
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
}

// OwnStudentRecord allows a STUDENT whose own record id equals the {param}
// URL parameter
func OwnStudentRecord(locator StudentLocator, param string) Guard {
	return func(ctx context.Context) Decision {
		user := CurrentUser(ctx)
		if user == nil || user.Role != models.RoleStudent {
			return Deny("not a student")
		}

		id, err := strconv.ParseInt(chi.URLParamFromCtx(ctx, param), 10, 64)
		if err != nil {
			return Deny("invalid record id")
		}

		student, err := locator.GetByEmail(ctx, user.Email)
		if err != nil {
			// A student without a record simply owns nothing
			if services.IsNotFoundError(err) {
				return Deny("no linked student record")
			}
			return Decision{Reason: "student lookup failed", Err: err}
		}
		if student.ID != id {
			return Deny("not the owner of this record")
		}
		return Allow()
	}
}

// AnyOf allows when at least one guard allows. The last denial is reported.
func AnyOf(guards ...Guard) Guard {
	return func(ctx context.Context) Decision {
		last := Deny("no guard allowed the request")
		for _, guard := range guards {
			decision := guard(ctx)
			if decision.Allowed {
				return decision
			}
			last = decision
		}
		return last
	}
}
