package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Flash categories
const (
	CategoryError   = "error"
	CategorySuccess = "success"
	CategoryInfo    = "info"
)

const (
	flashIssuer = "student-records/flash"
	flashTTL    = 10 * time.Minute
)

// Flash is a one-shot notification shown on the next rendered page
type Flash struct {
	Message  string `json:"m"`
	Category string `json:"c"`
}

type flashClaims struct {
	Flashes []Flash `json:"f"`
	jwt.RegisteredClaims
}

// flashBag holds the flashes of one request. Incoming flashes arrived with
// the request cookie; outgoing ones were added while handling it.
type flashBag struct {
	mu        sync.Mutex
	incoming  []Flash
	outgoing  []Flash
	hadCookie bool
}

type flashKey struct{}

// Flasher persists flashes across redirects in a signed cookie
type Flasher struct {
	secret     []byte
	cookieName string
	secure     bool
	logger     *zap.Logger
}

// NewFlasher creates a Flasher signing its cookie with secret
func NewFlasher(secret, cookieName string, secure bool, logger *zap.Logger) *Flasher {
	if cookieName == "" {
		cookieName = "flash"
	}
	return &Flasher{
		secret:     []byte(secret),
		cookieName: cookieName,
		secure:     secure,
		logger:     logger,
	}
}

// Middleware loads flashes from the request cookie and writes the pending
// ones back before the response header goes out
func (f *Flasher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bag := &flashBag{}
		if cookie, err := r.Cookie(f.cookieName); err == nil && cookie.Value != "" {
			bag.hadCookie = true
			flashes, err := f.decode(cookie.Value)
			if err != nil {
				f.logger.Debug("dropping invalid flash cookie", zap.Error(err))
			}
			bag.incoming = flashes
		}

		fw := &flashWriter{ResponseWriter: w, flasher: f, bag: bag}
		next.ServeHTTP(fw, r.WithContext(context.WithValue(r.Context(), flashKey{}, bag)))
		fw.commit()
	})
}

// AddFlash queues a notification for the next rendered page
func AddFlash(r *http.Request, message, category string) {
	bag, ok := r.Context().Value(flashKey{}).(*flashBag)
	if !ok {
		return
	}
	bag.mu.Lock()
	defer bag.mu.Unlock()
	bag.outgoing = append(bag.outgoing, Flash{Message: message, Category: category})
}

// PopFlashes returns every queued flash and clears the queue
func PopFlashes(r *http.Request) []Flash {
	bag, ok := r.Context().Value(flashKey{}).(*flashBag)
	if !ok {
		return nil
	}
	bag.mu.Lock()
	defer bag.mu.Unlock()
	flashes := append(append([]Flash(nil), bag.incoming...), bag.outgoing...)
	bag.incoming = nil
	bag.outgoing = nil
	return flashes
}

func (f *Flasher) encode(flashes []Flash) (string, error) {
	now := time.Now()
	claims := flashClaims{
		Flashes: flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    flashIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

func (f *Flasher) decode(value string) ([]Flash, error) {
	var claims flashClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(flashIssuer),
	)
	if _, err := parser.ParseWithClaims(value, &claims, func(_ *jwt.Token) (any, error) {
		return f.secret, nil
	}); err != nil {
		return nil, err
	}
	return claims.Flashes, nil
}

// flashWriter sets the flash cookie right before the header is written
type flashWriter struct {
	http.ResponseWriter
	flasher   *Flasher
	bag       *flashBag
	committed bool
}

func (w *flashWriter) WriteHeader(status int) {
	w.commit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *flashWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *flashWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *flashWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	w.bag.mu.Lock()
	pending := append(append([]Flash(nil), w.bag.incoming...), w.bag.outgoing...)
	hadCookie := w.bag.hadCookie
	w.bag.mu.Unlock()

	if len(pending) == 0 {
		if hadCookie {
			http.SetCookie(w.ResponseWriter, w.flasher.cookie("", -1))
		}
		return
	}

	value, err := w.flasher.encode(pending)
	if err != nil {
		w.flasher.logger.Error("failed to encode flash cookie", zap.Error(err))
		return
	}
	http.SetCookie(w.ResponseWriter, w.flasher.cookie(value, int(flashTTL.Seconds())))
}

func (f *Flasher) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     f.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
