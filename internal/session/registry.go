package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"glossa/internal/domain"
)

// Registry is the in-memory map of live sessions. There is no
// cross-session persistence: an expired or deleted session takes its
// event log and report with it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity.
func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a new pending session.
func (r *Registry) Create(language string, durationMinutes int) *Session {
	sess := New(language, durationMinutes)

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	r.logger.Info("session created",
		"session_id", sess.ID,
		"language", language,
		"duration_minutes", durationMinutes,
	)
	return sess
}

// Get returns the session by id or domain.ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.NotFoundError{Message: "session not found: " + id}
	}
	return sess, nil
}

// Delete removes and closes a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		sess.Close()
		r.logger.Info("session deleted", "session_id", id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartSweeper evicts idle sessions on the given interval until ctx is
// cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

// sweep removes sessions idle longer than the TTL.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	var expired []*Session
	for id, sess := range r.sessions {
		if now.Sub(sess.LastActivity()) > r.ttl {
			delete(r.sessions, id)
			expired = append(expired, sess)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
		r.logger.Info("session expired", "session_id", sess.ID)
	}
}
