// Package session keeps questionnaire sessions in memory for the HTTP API.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/questionnaire"
)

var (
	// ErrNotFound is returned for unknown, malformed or expired session ids.
	ErrNotFound = eris.New("session: not found")
	// ErrCapacity is returned when the store already holds MaxSessions live sessions.
	ErrCapacity = eris.New("session: too many active sessions")
)

// Factory builds the controller of a new session.
type Factory func() *questionnaire.Controller

// Session is one questionnaire run. Its controller is only reachable through
// Do or With, which serialize access.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	ctrl     *questionnaire.Controller
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's controller and returns
// its error.
func (s *Session) Do(fn func(c *questionnaire.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}

// With is Do for callbacks that cannot fail.
func (s *Session) With(fn func(c *questionnaire.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

// Store holds live sessions. Idle sessions expire after the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	factory Factory
	ttl     time.Duration
	max     int // 0 means unlimited
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(factory Factory, ttl time.Duration, maxSessions int, opts ...Option) *Store {
	s := &Store{
		sessions: map[string]*Session{},
		factory:  factory,
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
		log:      zap.L().With(zap.String("component", "session")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session. Expired sessions are swept first when the
// store is full.
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.max > 0 && len(s.sessions) >= s.max {
		s.sweepLocked(now)
		if len(s.sessions) >= s.max {
			return nil, ErrCapacity
		}
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ctrl:      s.factory(),
		lastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	s.log.Debug("session created", zap.String("session_id", sess.ID), zap.Int("active", len(s.sessions)))
	return sess, nil
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (s *Store) sweepLocked(now time.Time) int {
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}
