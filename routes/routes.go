package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/student-records/app"
	"github.com/upb/student-records/handlers"
	"github.com/upb/student-records/internal/observability"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	if deps.Config.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(observability.AccessLog(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	if deps.Redis != nil {
		health.WithCheck("redis", func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	// HTML pages: flashes and the signed-in user are available to everything below
	r.Group(func(r chi.Router) {
		r.Use(deps.Flasher.Middleware)
		r.Use(middleware.LoadUser(deps.Sessions, deps.Logger))

		staff := deps.Gate.Require(
			middleware.Authenticated(),
			middleware.RequireRoles(models.RoleManager, models.RoleAdmin),
		)
		admin := deps.Gate.Require(
			middleware.Authenticated(),
			middleware.RequireRoles(models.RoleAdmin),
		)
		staffOrOwner := deps.Gate.Require(
			middleware.Authenticated(),
			middleware.AnyOf(
				middleware.RequireRoles(models.RoleManager, models.RoleAdmin),
				middleware.OwnStudentRecord(deps.StudentService, "id"),
			),
		)

		r.Get("/", handlers.HomeHandler(deps.Renderer))

		authHandler := deps.AuthHandler()
		r.Get("/login", authHandler.HandleShowLogin)
		r.With(deps.LoginThrottle.Limit).Post("/login", authHandler.HandleLogin)
		r.Get("/logout", authHandler.HandleLogout)

		studentHandler := handlers.NewStudentHandler(deps.StudentService, deps.MajorService, deps.Renderer, deps.Logger)
		r.Route("/students", func(r chi.Router) {
			r.With(staff).Get("/", studentHandler.HandleList)
			r.With(staff).Post("/", studentHandler.HandleCreate)
			r.With(staff).Get("/new", studentHandler.HandleNew)

			r.Route("/{id}", func(r chi.Router) {
				r.With(staffOrOwner).Get("/", studentHandler.HandleShow)
				r.Group(func(r chi.Router) {
					r.Use(staff)
					r.Post("/", studentHandler.HandleUpdate)
					r.Get("/edit", studentHandler.HandleEdit)
					r.Post("/delete", studentHandler.HandleDelete)
				})
			})
		})

		majorHandler := handlers.NewMajorHandler(deps.MajorService, deps.Renderer, deps.Logger)
		r.Route("/majors", func(r chi.Router) {
			r.With(staff).Get("/", majorHandler.HandleList)
			r.With(admin).Post("/", majorHandler.HandleCreate)
		})

		// User administration (require admin role)
		userHandler := handlers.NewUserHandler(deps.AccountService, deps.Renderer, deps.Logger)
		r.Route("/users", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", userHandler.HandleList)
			r.Post("/", userHandler.HandleCreate)
			r.Get("/new", userHandler.HandleNew)
			r.Post("/{id}/delete", userHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "page not found")
	})

	return r
}
