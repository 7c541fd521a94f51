package middleware

import (
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	throttleIdleTTL      = 10 * time.Minute
	throttleSweepTrigger = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimitResponder writes the response for a throttled request
type LimitResponder interface {
	TooManyRequests(w http.ResponseWriter, r *http.Request)
}

// Throttle limits requests per client IP with a token bucket
type Throttle struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	now       func() time.Time
	responder LimitResponder
	logger    *zap.Logger
}

// NewThrottle allows perMinute requests per client IP with the given burst.
// Throttled requests are answered by responder, or with a JSON 429 when it
// is nil.
func NewThrottle(perMinute, burst int, responder LimitResponder, logger *zap.Logger) *Throttle {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		now:       time.Now,
		responder: responder,
		logger:    logger,
	}
}

// Allow reports whether a request from key may proceed now
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if len(t.clients) >= throttleSweepTrigger {
		t.sweep(now)
	}

	c, ok := t.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep drops limiters idle long enough to have refilled. Caller holds mu.
func (t *Throttle) sweep(now time.Time) {
	for key, c := range t.clients {
		if now.Sub(c.lastSeen) > throttleIdleTTL {
			delete(t.clients, key)
		}
	}
}

// Limit answers 429 once a client exceeds its budget
func (t *Throttle) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r)
		if !t.Allow(ip) {
			t.logger.Warn("request throttled",
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("remote_ip", ip),
				zap.String("path", r.URL.Path))
			if t.responder != nil {
				t.responder.TooManyRequests(w, r)
				return
			}
			_ = utils.WriteTooManyRequests(w, "Too many login attempts, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
