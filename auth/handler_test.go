package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/student-records/config"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/session"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type studentsByEmail map[string]*models.Student

func (s studentsByEmail) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	if st, ok := s[strings.ToLower(email)]; ok {
		return st, nil
	}
	return nil, services.ErrStudentNotFound
}

type usersByID map[int64]*models.User

func (u usersByID) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, services.ErrUserNotFound
}

var (
	manager = &models.User{ID: 3, Username: "manager", Role: models.RoleManager}
	student = &models.User{ID: 1, Username: "student", Email: "student@umd.edu", Role: models.RoleStudent}
	orphan  = &models.User{ID: 2, Username: "zkpaidas", Email: "zkpaidas@umd.edu", Role: models.RoleStudent}
	public  = &models.User{ID: 5, Username: "visitor", Role: models.RolePublic}
)

type fixture struct {
	handler  http.Handler
	auth     *MockAuthenticator
	sessions *session.Manager
	store    session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rd, err := web.NewRenderer(zap.NewNop())
	require.NoError(t, err)

	store := session.NewMemoryStore()
	sessions := session.NewManager(store, usersByID{1: student, 2: orphan, 3: manager, 5: public}, config.SessionConfig{
		Secret:     "auth-test-secret",
		TTL:        time.Hour,
		CookieName: "session",
	}, zap.NewNop())

	authn := new(MockAuthenticator)
	h := NewHandler(authn, sessions, studentsByEmail{"student@umd.edu": {ID: 11, Email: "student@umd.edu"}}, rd, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", h.HandleShowLogin)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("GET /logout", h.HandleLogout)

	flasher := web.NewFlasher("auth-test-secret", "flash", false, zap.NewNop())
	return &fixture{
		handler:  flasher.Middleware(middleware.LoadUser(sessions, zap.NewNop())(mux)),
		auth:     authn,
		sessions: sessions,
		store:    store,
	}
}

func (f *fixture) do(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *fixture) flashes(w *httptest.ResponseRecorder) []string {
	var out []string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if c := cookieNamed(w, "flash"); c != nil {
		req.AddCookie(c)
	}
	web.NewFlasher("auth-test-secret", "flash", false, zap.NewNop()).
		Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			for _, fl := range web.PopFlashes(r) {
				out = append(out, fl.Message)
			}
		})).ServeHTTP(httptest.NewRecorder(), req)
	return out
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestLogin_LandingByRole(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		want    string
		flashes []string
	}{
		{"manager lands on the student list", manager, "/students", nil},
		{"student lands on their own record", student, "/students/11", nil},
		{"student without a record goes home", orphan, "/", []string{NoStudentRecordMessage}},
		{"public goes home", public, "/", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.On("Authenticate", mock.Anything, tt.user.Username, "pw").Return(tt.user, nil)

			w := f.do(http.MethodPost, "/login", credentials(tt.user.Username, "pw"), nil)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
			require.NotNil(t, cookieNamed(w, "session"))
			assert.Equal(t, tt.flashes, f.flashes(w))

			// The new cookie identifies the user on the next request
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookieNamed(w, "session"))
			resolved, err := f.sessions.ResolveCurrentUser(req)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, tt.user.ID, resolved.ID)
		})
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Authenticate", mock.Anything, "manager", "wrong").Return(nil, services.ErrInvalidCredentials)

	w := f.do(http.MethodPost, "/login", credentials("manager", "wrong"), nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, cookieNamed(w, "session"))
	assert.Equal(t, []string{"Invalid username or password"}, f.flashes(w))
}

func TestLogin_BackendFailureLooksLikeBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Authenticate", mock.Anything, "manager", "pw").Return(nil, services.WrapInternal("failed to load user", errors.New("db down")))

	w := f.do(http.MethodPost, "/login", credentials("manager", "pw"), nil)

	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, cookieNamed(w, "session"))
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	form := credentials("", "")
	form.Set("next", "/students/11")
	w := f.do(http.MethodPost, "/login", form, nil)

	assert.Equal(t, "/login?next=%2Fstudents%2F11", w.Header().Get("Location"))
	assert.Equal(t, []string{"Username is required", "Password is required"}, f.flashes(w))
	f.auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Next(t *testing.T) {
	t.Run("local next wins over the landing page", func(t *testing.T) {
		f := newFixture(t)
		f.auth.On("Authenticate", mock.Anything, "manager", "pw").Return(manager, nil)

		form := credentials("manager", "pw")
		form.Set("next", "/majors")
		w := f.do(http.MethodPost, "/login", form, nil)

		assert.Equal(t, "/majors", w.Header().Get("Location"))
	})

	t.Run("external next is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.auth.On("Authenticate", mock.Anything, "manager", "pw").Return(manager, nil)

		form := credentials("manager", "pw")
		form.Set("next", "https://evil.example/phish")
		w := f.do(http.MethodPost, "/login", form, nil)

		assert.Equal(t, "/students", w.Header().Get("Location"))
	})

	t.Run("failure keeps next", func(t *testing.T) {
		f := newFixture(t)
		f.auth.On("Authenticate", mock.Anything, "manager", "bad").Return(nil, services.ErrInvalidCredentials)

		form := credentials("manager", "bad")
		form.Set("next", "/majors")
		w := f.do(http.MethodPost, "/login", form, nil)

		assert.Equal(t, "/login?next=%2Fmajors", w.Header().Get("Location"))
	})
}

func TestShowLogin(t *testing.T) {
	t.Run("renders the form with next", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/login?next=/students/11", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="next" value="/students/11"`)
	})

	t.Run("drops unsafe next", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/login?next=//evil.example", nil, nil)

		assert.Contains(t, w.Body.String(), `name="next" value=""`)
	})

	t.Run("logged in users are sent to their landing page", func(t *testing.T) {
		f := newFixture(t)
		f.auth.On("Authenticate", mock.Anything, "manager", "pw").Return(manager, nil)
		login := f.do(http.MethodPost, "/login", credentials("manager", "pw"), nil)

		w := f.do(http.MethodGet, "/login", nil, []*http.Cookie{cookieNamed(login, "session")})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/students", w.Header().Get("Location"))
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Authenticate", mock.Anything, "manager", "pw").Return(manager, nil)
	login := f.do(http.MethodPost, "/login", credentials("manager", "pw"), nil)
	sessionCookie := cookieNamed(login, "session")
	require.NotNil(t, sessionCookie)

	w := f.do(http.MethodGet, "/logout", nil, []*http.Cookie{sessionCookie})

	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []string{LoggedOutMessage}, f.flashes(w))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	user, err := f.sessions.ResolveCurrentUser(req)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Logging out twice is harmless
	w = f.do(http.MethodGet, "/logout", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}
