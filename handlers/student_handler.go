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
	"github.com/upb/student-records/services/students"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// StudentService defines the student record operations the handlers use
type StudentService interface {
	List(ctx context.Context) ([]*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, in students.StudentInput) (*models.Student, error)
	Update(ctx context.Context, id int64, in students.StudentInput) (*models.Student, error)
	Delete(ctx context.Context, id int64) (*models.Student, error)
}

// PageRenderer renders a named HTML page
type PageRenderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

// StudentFormView is the data of the add/edit student page. Student is
// blank when adding.
type StudentFormView struct {
	Action  string
	Student *models.Student
	Majors  []*models.Major
}

// StudentHandler handles the student record pages
type StudentHandler struct {
	students StudentService
	majors   MajorService
	renderer PageRenderer
	logger   *zap.Logger
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService StudentService, majorService MajorService, renderer PageRenderer, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		students: studentService,
		majors:   majorService,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleList handles GET /students
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.students.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, "/", h.logger)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "students_list", "Students", list)
}

// HandleNew handles GET /students/new
func (h *StudentHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	majors, err := h.majors.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, "/students", h.logger)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "student_form", "Add student", StudentFormView{
		Action:  "/students",
		Student: &models.Student{},
		Majors:  majors,
	})
}

// HandleCreate handles POST /students
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := parseStudentForm(r)
	if err != nil {
		HandleServiceError(w, r, err, "/students/new", h.logger)
		return
	}

	student, err := h.students.Create(r.Context(), in)
	if err != nil {
		HandleServiceError(w, r, err, "/students/new", h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("Student %s %s added.", student.FirstName, student.LastName), web.CategorySuccess)
	web.Redirect(w, r, studentPath(student.ID))
}

// HandleShow handles GET /students/{id}
func (h *StudentHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	// Only staff can see the list; everyone else goes home
	back := "/"
	if middleware.CurrentUser(r.Context()).CanManageStudents() {
		back = "/students"
	}

	id, ok := studentIDParam(r)
	if !ok {
		HandleServiceError(w, r, services.ErrStudentNotFound, back, h.logger)
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, back, h.logger)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "student_view", student.FullName(), student)
}

// HandleEdit handles GET /students/{id}/edit
func (h *StudentHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(r)
	if !ok {
		HandleServiceError(w, r, services.ErrStudentNotFound, "/students", h.logger)
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, "/students", h.logger)
		return
	}
	majors, err := h.majors.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, studentPath(id), h.logger)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "student_form", "Edit student", StudentFormView{
		Action:  studentPath(id),
		Student: student,
		Majors:  majors,
	})
}

// HandleUpdate handles POST /students/{id}
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(r)
	if !ok {
		HandleServiceError(w, r, services.ErrStudentNotFound, "/students", h.logger)
		return
	}

	in, err := parseStudentForm(r)
	if err != nil {
		HandleServiceError(w, r, err, studentPath(id)+"/edit", h.logger)
		return
	}

	student, err := h.students.Update(r.Context(), id, in)
	if err != nil {
		back := studentPath(id) + "/edit"
		if services.IsNotFoundError(err) {
			back = "/students"
		}
		HandleServiceError(w, r, err, back, h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("Student %s %s updated.", student.FirstName, student.LastName), web.CategorySuccess)
	web.Redirect(w, r, studentPath(student.ID))
}

// HandleDelete handles POST /students/{id}/delete
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(r)
	if !ok {
		HandleServiceError(w, r, services.ErrStudentNotFound, "/students", h.logger)
		return
	}

	student, err := h.students.Delete(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, "/students", h.logger)
		return
	}

	web.AddFlash(r, fmt.Sprintf("Student %s %s deleted.", student.FirstName, student.LastName), web.CategorySuccess)
	web.Redirect(w, r, "/students")
}

func studentPath(id int64) string {
	return "/students/" + strconv.FormatInt(id, 10)
}

func studentIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseStudentForm(r *http.Request) (students.StudentInput, error) {
	if err := r.ParseForm(); err != nil {
		return students.StudentInput{}, services.ErrInvalidInput.Wrap(err)
	}
	return students.StudentInput{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Email:     r.PostForm.Get("email"),
		MajorID:   r.PostForm.Get("major_id"),
		BirthDate: r.PostForm.Get("birth_date"),
		IsHonors:  checkbox(r.PostForm.Get("is_honors")),
	}, nil
}

// checkbox reads an HTML checkbox; browsers omit unchecked boxes entirely
func checkbox(value string) bool {
	switch value {
	case "", "0", "false", "off", "no", "n":
		return false
	default:
		return true
	}
}
