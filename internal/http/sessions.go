package http

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/checkout"
	"go.uber.org/zap"
)

var ErrSessionLimit = errors.New("session limit reached")

// SessionFactory builds and starts the App for a new session id.
type SessionFactory func(ctx context.Context, id string) (*app.App, error)

type SessionsConfig struct {
	// IdleTTL is how long a session survives without requests. Zero disables eviction.
	IdleTTL time.Duration
	// MaxSessions caps live sessions. Zero means no cap.
	MaxSessions int
}

type session struct {
	app      *app.App
	lastSeen time.Time
}

// Sessions maps session cookies to their App.
type Sessions struct {
	factory SessionFactory
	cfg     SessionsConfig
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessions(factory SessionFactory, cfg SessionsConfig, logger *zap.Logger) *Sessions {
	return &Sessions{
		factory:  factory,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the session's App and marks it as used.
func (s *Sessions) Get(id string) (*app.App, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	sess.lastSeen = s.now()
	return sess.app, true
}

// Create starts a fresh session under a new random id. Idle sessions are evicted first
// when the cap is reached; ErrSessionLimit is returned if none can be.
func (s *Sessions) Create(ctx context.Context) (*app.App, error) {
	if err := s.reserve(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	a, err := s.factory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}

	s.mu.Lock()
	if s.fullLocked() {
		s.mu.Unlock()
		return nil, ErrSessionLimit
	}
	s.sessions[id] = &session{app: a, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session_id", id))

	return a, nil
}

func (s *Sessions) reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fullLocked() {
		return nil
	}

	s.evictLocked()
	if s.fullLocked() {
		s.logger.Warn("session limit reached", zap.Int("sessions", len(s.sessions)))
		return ErrSessionLimit
	}

	return nil
}

func (s *Sessions) fullLocked() bool {
	return s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions
}

// Evict drops sessions idle for longer than IdleTTL and returns how many were dropped.
// Sessions with an order in flight are kept.
func (s *Sessions) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Sessions) evictLocked() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.cfg.IdleTTL)

	var evicted int
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.app.CheckoutState() == checkout.StateSubmitting {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}

	if evicted > 0 {
		s.logger.Info("idle sessions evicted", zap.Int("evicted", evicted), zap.Int("sessions", len(s.sessions)))
	}

	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
