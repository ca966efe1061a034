// Package session keeps one shell.Page per visitor, keyed by a cookie.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/shell"
)

// CookieName is the cookie carrying the session id.
const CookieName = "portfolio_session"

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// Options configures a Store.
type Options struct {
	TTL time.Duration
	// MaxSessions caps live pages. Creating one more evicts the page seen
	// least recently.
	MaxSessions int
	Clock       clock.Clock
	Logger      *slog.Logger
}

type entry struct {
	page     *shell.Page
	lastSeen time.Time
}

// Store owns every live page. Pages idle longer than the TTL are closed by
// Sweep.
type Store struct {
	newPage func() *shell.Page
	clock   clock.Clock
	ttl     time.Duration
	max     int
	log     *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore returns a store creating pages with newPage.
func NewStore(newPage func() *shell.Page, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		newPage: newPage,
		clock:   opts.Clock,
		ttl:     opts.TTL,
		max:     opts.MaxSessions,
		log:     opts.Logger,
		entries: make(map[string]*entry),
	}
}

// Get returns the page for id and marks it as recently used.
func (s *Store) Get(id string) (*shell.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.clock.Now()
	return e.page, true
}

// Create starts a new page under a fresh id. At capacity the least recently
// seen page is closed to make room.
func (s *Store) Create() (string, *shell.Page) {
	id := uuid.NewString()
	p := s.newPage()

	s.mu.Lock()
	var evicted *shell.Page
	if len(s.entries) >= s.max {
		evicted = s.evictOldestLocked()
	}
	s.entries[id] = &entry{page: p, lastSeen: s.clock.Now()}
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		s.log.Warn("session limit reached, evicted oldest", "limit", s.max)
	}
	return id, p
}

func (s *Store) evictOldestLocked() *shell.Page {
	var (
		oldestID string
		oldest   *entry
	)
	for id, e := range s.entries {
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, e
		}
	}
	if oldest == nil {
		return nil
	}
	delete(s.entries, oldestID)
	return oldest.page
}

// Len returns the number of live pages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes and forgets pages idle for longer than the TTL. It returns how
// many were evicted.
func (s *Store) Sweep() int {
	cutoff := s.clock.Now().Add(-s.ttl)
	var stale []*shell.Page

	s.mu.Lock()
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.page)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	if len(stale) > 0 {
		s.log.Debug("sessions evicted", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes every page.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close tears down every page.
func (s *Store) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range entries {
		e.page.Close()
	}
}
