package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/services/accounts"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// AccountService defines the user administration operations
type AccountService interface {
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, in accounts.UserInput) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) (*models.User, error)
}

// UserHandler handles the user administration pages
type UserHandler struct {
	accounts AccountService
	renderer PageRenderer
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accountService AccountService, renderer PageRenderer, logger *zap.Logger) *UserHandler {
	return &UserHandler{accounts: accountService, renderer: renderer, logger: logger}
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, "/", h.logger)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "users_list", "Users", users)
}

// HandleNew handles GET /users/new
func (h *UserHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "user_form", "Add user", accounts.UserInput{
		Role: models.RoleStudent.String(),
	})
}

// HandleCreate handles POST /users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		HandleServiceError(w, r, services.ErrInvalidInput.Wrap(err), "/users/new", h.logger)
		return
	}

	user, err := h.accounts.Create(r.Context(), accounts.UserInput{
		Username:  r.PostForm.Get("username"),
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Email:     r.PostForm.Get("email"),
		Password:  r.PostForm.Get("password"),
		Role:      r.PostForm.Get("role"),
	})
	if err != nil {
		HandleServiceError(w, r, err, "/users/new", h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("User %s created.", user.Username), web.CategorySuccess)
	web.Redirect(w, r, "/users")
}

// HandleDelete handles POST /users/{id}/delete
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		HandleServiceError(w, r, services.ErrUserNotFound, "/users", h.logger)
		return
	}

	user, err := h.accounts.Delete(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		HandleServiceError(w, r, err, "/users", h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("User %s deleted.", user.Username), web.CategorySuccess)
	web.Redirect(w, r, "/users")
}
