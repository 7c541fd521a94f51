package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/student-records/config"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/services"
	"go.uber.org/zap"
)

// UserLoader loads the user a session belongs to
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Manager starts, resolves and ends login sessions
type Manager struct {
	store  Store
	codec  *TokenCodec
	users  UserLoader
	cfg    config.SessionConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a session manager
func NewManager(store Store, users UserLoader, cfg config.SessionConfig, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		codec:  NewTokenCodec(cfg.Secret),
		users:  users,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// StartSession stores a new session for user and sets the session cookie
func (m *Manager) StartSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	now := m.now()
	rec := Record{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}

	// Drop any session the browser already carries
	if old, err := r.Cookie(m.cfg.CookieName); err == nil {
		if claims, err := m.codec.Parse(old.Value); err == nil {
			_ = m.store.Delete(r.Context(), claims.ID)
		}
	}

	if err := m.store.Save(r.Context(), rec, m.cfg.TTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.codec.Sign(rec.ID, user.ID, now, rec.ExpiresAt)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Info("session started",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role.String()),
	)
	return nil
}

// ResolveCurrentUser returns the logged-in user, or (nil, nil) for an
// anonymous request. Only store and database failures are errors.
func (m *Manager) ResolveCurrentUser(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	claims, err := m.codec.Parse(cookie.Value)
	if err != nil {
		m.logger.Debug("ignoring invalid session cookie", zap.Error(err))
		return nil, nil
	}

	rec, err := m.store.Get(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != claims.UserID || rec.Expired(m.now()) {
		return nil, nil
	}

	user, err := m.users.GetByID(r.Context(), rec.UserID)
	if err != nil {
		if services.IsNotFoundError(err) {
			_ = m.store.Delete(r.Context(), rec.ID)
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// EndSession deletes the session record and expires the cookie. Safe to call
// without a session.
func (m *Manager) EndSession(w http.ResponseWriter, r *http.Request) error {
	var deleteErr error
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil {
		if claims, err := m.codec.Parse(cookie.Value); err == nil {
			deleteErr = m.store.Delete(r.Context(), claims.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if deleteErr != nil {
		return fmt.Errorf("failed to delete session: %w", deleteErr)
	}
	return nil
}
