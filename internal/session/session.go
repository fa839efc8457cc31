// Package session keeps per-visitor viewer and contact state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/contact"
	"github.com/starford/designa/internal/gallery"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/viewer"
)

// Session is one visitor's server-side UI state.
type Session struct {
	ID      string
	Viewer  *viewer.Viewer
	Contact *contact.Controller

	mu          sync.Mutex
	filter      gallery.ArtworkFilter
	listVersion string
	lastSeen    time.Time
}

// Filter returns the gallery filter the visitor last applied.
func (s *Session) Filter() gallery.ArtworkFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter stores f and makes its result the viewer's displayed list.
func (s *Session) SetFilter(f gallery.ArtworkFilter, snap *catalog.Snapshot) []models.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return s.applyLocked(snap)
}

// Sync recomputes the displayed list when the catalog changed since it
// was last derived.
func (s *Session) Sync(snap *catalog.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listVersion != snap.Version {
		s.applyLocked(snap)
	}
}

func (s *Session) applyLocked(snap *catalog.Snapshot) []models.Artwork {
	list := gallery.FilterArtworks(snap.Artworks, s.filter)
	s.Viewer.SetList(list)
	s.listVersion = snap.Version
	return list
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Release frees the session's background resources.
func (s *Session) Release() {
	s.Viewer.Release()
	s.Contact.Close()
}

// Factory builds the viewer and controller of a new session.
type Factory func(id string) (*viewer.Viewer, *contact.Controller)

// Registry maps visitor ids to sessions.
type Registry struct {
	factory Factory
	idle    time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. Sessions unused for longer than
// idle are dropped by Sweep.
func NewRegistry(factory Factory, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Registry{
		factory:  factory,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it when unknown. An id that is
// not a UUID is replaced with a fresh one; callers should hand the returned
// session's ID back to the visitor.
func (r *Registry) Get(id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.touch(now)
		return s, false
	}
	v, c := r.factory(id)
	s = &Session{ID: id, Viewer: v, Contact: c, lastSeen: now}
	r.sessions[id] = s
	return s, true
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep releases sessions idle at now for longer than the idle timeout.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > r.idle {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Release()
	}
	return len(expired)
}

// Close releases every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Release()
	}
}
