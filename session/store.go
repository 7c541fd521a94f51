// Package session keeps login sessions: a signed cookie names a session
// record held in Redis or in memory, and the record names the user.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Record is a stored login session
type Record struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Store persists session records. Get returns (nil, nil) for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, rec Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// memorySweepTrigger is the record count at which Save drops expired records
const memorySweepTrigger = 1024

type memoryStore struct {
	mu    sync.Mutex
	items map[string]Record
	now   func() time.Time
}

// NewMemoryStore creates a process-local session store
func NewMemoryStore() Store {
	return &memoryStore{
		items: make(map[string]Record),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) Save(_ context.Context, rec Record, ttl time.Duration) error {
	if strings.TrimSpace(rec.ID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.items) >= memorySweepTrigger {
		s.sweep(now)
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}
	s.items[rec.ID] = rec
	return nil
}

// sweep drops expired records. Caller holds mu.
func (s *memoryStore) sweep(now time.Time) {
	for id, rec := range s.items {
		if rec.Expired(now) {
			delete(s.items, id)
		}
	}
}

func (s *memoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	if rec.Expired(s.now()) {
		delete(s.items, id)
		return nil, nil
	}
	return &rec, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
