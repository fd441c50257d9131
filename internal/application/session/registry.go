package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("session: not found")
	ErrInvalidID = errors.New("session: invalid id")
)

// DefaultTTL is how long an unused session lives.
const DefaultTTL = 30 * time.Minute

// Registry keeps the live sessions of the process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	ttl      time.Duration
	log      *zap.Logger
}

func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	deps.Store = deps.Store.WithDefaults()
	return &Registry{
		sessions: map[string]*Session{},
		deps:     deps,
		ttl:      ttl,
		log:      deps.Store.Log.Named("session"),
	}
}

// Create starts a new session with a fresh time-ordered id.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, id.String(), r.deps, r.now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.deps.Store.Metrics.SessionsActive(n)
	r.log.Info("[session] created", zap.String("id", s.ID))
	return s, nil
}

// Open returns the live session with id, or rebuilds one under that id so
// its persisted PC-builder selection is reloaded. An empty id creates a new
// session. Ids must be UUIDs.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return r.Create(ctx)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	if s, err := r.Get(id); err == nil {
		return s, nil
	}

	s, err := New(ctx, id, r.deps, r.now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if cur, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.Close()
		cur.Touch(r.now())
		return cur, nil
	}
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.deps.Store.Metrics.SessionsActive(n)
	r.log.Info("[session] reopened", zap.String("id", id))
	return s, nil
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidID
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(r.now())
	return s, nil
}

// End removes a session and stops its watches.
func (r *Registry) End(id string) error {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	r.deps.Store.Metrics.SessionsActive(n)
	r.log.Info("[session] ended", zap.String("id", id))
	return nil
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends every session idle since before now-ttl. It returns how many
// were ended.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.deps.Store.Metrics.SessionsActive(n)
		r.log.Info("[session] expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep(r.now())
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	r.deps.Store.Metrics.SessionsActive(0)
}

func (r *Registry) now() time.Time { return r.deps.Store.Clock.Now() }
