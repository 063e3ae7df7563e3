package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopfront/internal/metrics"
)

// SessionStore keeps catalog sessions in memory and expires idle ones.
type SessionStore struct {
	fetcher Fetcher
	opts    Options
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(f Fetcher, opts Options, ttl time.Duration, log *slog.Logger) *SessionStore {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		fetcher:  f,
		opts:     opts,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns a live session or nil when id is unknown or expired.
func (st *SessionStore) Get(id string) *Session {
	if id == "" {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	if st.expired(s) {
		delete(st.sessions, id)
		metrics.CatalogSessions.Set(float64(len(st.sessions)))
		return nil
	}
	return s
}

// Create registers a fresh session. It is not loaded yet.
func (st *SessionStore) Create() *Session {
	s := NewSession(uuid.NewString(), st.fetcher, st.opts, st.log)

	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.CatalogSessions.Set(float64(n))
	return s
}

// GetOrCreate returns the session for id, creating and loading a new one
// when needed. created reports whether a new session was made; err is a
// load failure, which leaves the session usable.
func (st *SessionStore) GetOrCreate(ctx context.Context, id string) (s *Session, created bool, err error) {
	if s = st.Get(id); s != nil {
		return s, false, nil
	}
	s = st.Create()
	_, err = s.Load(ctx)
	return s, true, err
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(s *Session) bool {
	return st.now().Sub(s.LastSeen()) > st.ttl
}

// Prune drops expired sessions and returns how many were removed.
func (st *SessionStore) Prune() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, id)
			removed++
		}
	}
	metrics.CatalogSessions.Set(float64(len(st.sessions)))
	return removed
}

// Serve prunes expired sessions until ctx is done.
func (st *SessionStore) Serve(ctx context.Context) error {
	interval := st.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if n := st.Prune(); n > 0 {
				st.log.Debug("catalog sessions pruned", "removed", n, "live", st.Len())
			}
		}
	}
}

func (st *SessionStore) String() string { return "catalog-session-janitor" }
