package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/upb/student-records/auth"
	"github.com/upb/student-records/config"
	internalauth "github.com/upb/student-records/internal/auth"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/repositories/postgres"
	"github.com/upb/student-records/services/accounts"
	"github.com/upb/student-records/services/majors"
	"github.com/upb/student-records/services/students"
	"github.com/upb/student-records/session"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger
	Redis  *redis.Client // nil when sessions live in memory

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Students  repositories.StudentRepository
	Majors    repositories.MajorRepository
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Services
	Hasher         *internalauth.Hasher
	StudentService *students.Service
	MajorService   *majors.Service
	AccountService *accounts.Service

	// Sessions and access control
	SessionStore  session.Store
	Sessions      *session.Manager
	Gate          *middleware.Gate
	LoginThrottle *middleware.Throttle

	// Presentation
	Renderer *web.Renderer
	Flasher  *web.Flasher

	authHandler *auth.Handler
}

// AuthHandler returns the login/logout handler for route wiring
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires the application around an open repository factory
func NewDependenciesFromFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()
	deps.initServices()
	deps.initSessions(ctx)

	if err := deps.initWeb(); err != nil {
		return nil, fmt.Errorf("failed to initialize templates: %w", err)
	}

	if !cfg.Session.CookieSecure && !cfg.IsDevelopment() {
		logger.Warn("session cookies are sent without the Secure flag",
			zap.String("environment", cfg.Environment))
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("environment", cfg.Environment),
		zap.Bool("redis_sessions", deps.Redis != nil))
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Students = repos.Students
	d.Majors = repos.Majors
	d.Users = repos.Users
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	d.Hasher = internalauth.NewHasher(0)
	d.StudentService = students.NewService(d.Students, d.Majors, d.Logger)
	d.MajorService = majors.NewService(d.Majors, d.Logger)
	d.AccountService = accounts.NewService(d.Users, d.Hasher, d.Logger)
}

// initSessions picks Redis when it is configured and answers, memory otherwise
func (d *Dependencies) initSessions(ctx context.Context) {
	if d.Config.UsesRedis() {
		client, err := session.Connect(ctx, d.Config.Redis)
		if err != nil {
			d.Logger.Warn("redis unavailable, falling back to in-memory sessions",
				zap.String("addr", d.Config.Redis.Addr),
				zap.Error(err))
		} else {
			d.Redis = client
			d.SessionStore = session.NewRedisStore(client, d.Config.Redis.Prefix)
			d.Logger.Info("session store initialized", zap.String("backend", "redis"))
		}
	}
	if d.SessionStore == nil {
		d.SessionStore = session.NewMemoryStore()
		d.Logger.Info("session store initialized", zap.String("backend", "memory"))
	}

	d.Sessions = session.NewManager(d.SessionStore, d.AccountService, d.Config.Session, d.Logger)
}

func (d *Dependencies) initWeb() error {
	renderer, err := web.NewRenderer(d.Logger)
	if err != nil {
		return err
	}
	d.Renderer = renderer
	d.Flasher = web.NewFlasher(d.Config.Session.Secret, d.Config.Session.FlashCookie, d.Config.Session.CookieSecure, d.Logger)
	d.Gate = middleware.NewGate(renderer, d.Logger)
	d.LoginThrottle = middleware.NewThrottle(d.Config.RateLimit.LoginPerMinute, d.Config.RateLimit.LoginBurst, renderer, d.Logger)
	d.authHandler = auth.NewHandler(d.AccountService, d.Sessions, d.StudentService, renderer, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			d.Logger.Info("redis connection closed")
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
