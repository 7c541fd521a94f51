// Package auth serves the login and logout pages and decides where a user
// lands after signing in.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

const (
	// LoggedOutMessage is flashed after logout
	LoggedOutMessage = "You have been logged out."
	// NoStudentRecordMessage is flashed to students without a linked record
	NoStudentRecordMessage = "No student record is linked to your account yet."
)

// Authenticator verifies login credentials
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// SessionManager starts and ends login sessions
type SessionManager interface {
	StartSession(w http.ResponseWriter, r *http.Request, user *models.User) error
	EndSession(w http.ResponseWriter, r *http.Request) error
}

// StudentLocator finds the student record linked to a user
type StudentLocator interface {
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
}

// Renderer renders a named HTML page
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

// LoginForm is the posted login form
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// LoginView is the data of the login page. The password is never echoed.
type LoginView struct {
	Username string
	Next     string
}

// Handler handles login and logout
type Handler struct {
	accounts Authenticator
	sessions SessionManager
	students StudentLocator
	renderer Renderer
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(accounts Authenticator, sessions SessionManager, students StudentLocator, renderer Renderer, logger *zap.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		sessions: sessions,
		students: students,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleShowLogin handles GET /login
func (h *Handler) HandleShowLogin(w http.ResponseWriter, r *http.Request) {
	if user := middleware.CurrentUser(r.Context()); user != nil {
		web.Redirect(w, r, h.landing(r, user))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "login", "Log in", LoginView{
		Next: utils.SafeNext(r.URL.Query().Get("next")),
	})
}

// HandleLogin handles POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := chimiddleware.GetReqID(r.Context())

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "")
		return
	}
	form := LoginForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Next:     utils.SafeNext(r.PostForm.Get("next")),
	}

	if err := utils.ValidateStruct(&form); err != nil {
		for _, msg := range utils.GetValidationMessages(err) {
			web.AddFlash(r, msg, web.CategoryError)
		}
		web.Redirect(w, r, utils.WithQuery("/login", "next", form.Next))
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if services.IsUnauthorizedError(err) {
			h.logger.Info("login failed",
				zap.String("request_id", requestID),
				zap.String("username", form.Username),
				zap.String("remote_ip", utils.ClientIP(r)))
		} else {
			h.logger.Error("login error",
				zap.String("request_id", requestID),
				zap.Error(err))
		}
		h.fail(w, r, form.Next)
		return
	}

	if err := h.sessions.StartSession(w, r, user); err != nil {
		h.logger.Error("failed to start session",
			zap.String("request_id", requestID),
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		web.AddFlash(r, services.UserMessage(err), web.CategoryError)
		web.Redirect(w, r, utils.WithQuery("/login", "next", form.Next))
		return
	}

	h.logger.Info("login succeeded",
		zap.String("request_id", requestID),
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role.String()))

	if form.Next != "" {
		web.Redirect(w, r, form.Next)
		return
	}
	web.Redirect(w, r, h.landing(r, user))
}

// HandleLogout handles GET /logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndSession(w, r); err != nil {
		h.logger.Warn("failed to end session",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	web.AddFlash(r, LoggedOutMessage, web.CategoryInfo)
	web.Redirect(w, r, "/")
}

// fail reports bad credentials without saying which part was wrong
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, next string) {
	web.AddFlash(r, services.ErrInvalidCredentials.Message, web.CategoryError)
	web.Redirect(w, r, utils.WithQuery("/login", "next", next))
}

// landing returns the page a user starts on after login
func (h *Handler) landing(r *http.Request, user *models.User) string {
	switch user.Role {
	case models.RoleManager, models.RoleAdmin:
		return "/students"
	case models.RoleStudent:
		student, err := h.students.GetByEmail(r.Context(), user.Email)
		if err == nil {
			return "/students/" + strconv.FormatInt(student.ID, 10)
		}
		if !services.IsNotFoundError(err) {
			h.logger.Error("failed to look up student record",
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.Int64("user_id", user.ID),
				zap.Error(err))
		}
		web.AddFlash(r, NoStudentRecordMessage, web.CategoryInfo)
		return "/"
	default:
		return "/"
	}
}
