package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/services/majors"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// MajorService defines the major operations the handlers use
type MajorService interface {
	List(ctx context.Context) ([]*models.Major, error)
	Create(ctx context.Context, in majors.MajorInput) (*models.Major, error)
}

// MajorHandler handles the majors page
type MajorHandler struct {
	majors   MajorService
	renderer PageRenderer
	logger   *zap.Logger
}

// NewMajorHandler creates a new MajorHandler
func NewMajorHandler(majorService MajorService, renderer PageRenderer, logger *zap.Logger) *MajorHandler {
	return &MajorHandler{majors: majorService, renderer: renderer, logger: logger}
}

// HandleList handles GET /majors
func (h *MajorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.majors.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, "/", h.logger)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "majors_list", "Majors", list)
}

// HandleCreate handles POST /majors
func (h *MajorHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		HandleServiceError(w, r, services.ErrInvalidInput.Wrap(err), "/majors", h.logger)
		return
	}

	major, err := h.majors.Create(r.Context(), majors.MajorInput{Name: r.PostForm.Get("major")})
	if err != nil {
		HandleServiceError(w, r, err, "/majors", h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("Major %s added.", major.Name), web.CategorySuccess)
	web.Redirect(w, r, "/majors")
}
