package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/designa/internal/apperr"
	"github.com/starford/designa/internal/models"
)

// ErrNotOpen is returned by operations that need an open artwork.
var ErrNotOpen = fmt.Errorf("viewer: no artwork open: %w", apperr.ErrInvalidInput)

// LookupFunc resolves an artwork id against the current catalog.
type LookupFunc func(id int) (*models.Artwork, bool)

// View is the rendered state of a viewer.
type View struct {
	Open         bool            `json:"open"`
	ListOpen     bool            `json:"listOpen"`
	Artwork      *models.Artwork `json:"artwork,omitempty"`
	SubImage     int             `json:"subImage"`
	Image        string          `json:"image,omitempty"`
	ImageCount   int             `json:"imageCount"`
	ReturnToList bool            `json:"returnToList"`
	Position     int             `json:"position"`
	Total        int             `json:"total"`
	HasPrev      bool            `json:"hasPrev"`
	HasNext      bool            `json:"hasNext"`
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithPolicy sets the edge policy for artwork navigation.
func WithPolicy(p Policy) Option {
	return func(v *Viewer) { v.policy = p }
}

// WithPrefetcher sets the image prefetcher.
func WithPrefetcher(p Prefetcher) Option {
	return func(v *Viewer) { v.prefetcher = p }
}

// WithLogger sets the logger used for prefetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) { v.logger = l }
}

// Viewer is one visitor's artwork modal. It is safe for concurrent use.
type Viewer struct {
	lookup     LookupFunc
	policy     Policy
	prefetcher Prefetcher
	logger     *slog.Logger

	mu    sync.Mutex
	state State
	list  []models.Artwork

	cancelPrefetch context.CancelFunc
	prefetching    sync.WaitGroup
}

// New creates a closed viewer with an empty displayed list.
func New(lookup LookupFunc, opts ...Option) *Viewer {
	v := &Viewer{
		lookup:     lookup,
		policy:     PolicyStop,
		prefetcher: NopPrefetcher{},
		logger:     slog.Default(),
		state:      Closed{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State returns the current state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Policy returns the navigation policy.
func (v *Viewer) Policy() Policy {
	return v.policy
}

// View renders the current state.
func (v *Viewer) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewLocked()
}

// SetList replaces the displayed list used for artwork navigation.
func (v *Viewer) SetList(list []models.Artwork) View {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list = slices.Clone(list)
	return v.viewLocked()
}

// OpenList shows the "all artworks" overlay. It has no effect while an
// artwork is open.
func (v *Viewer) OpenList() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.state.(Closed); ok {
		v.state = Closed{ListOpen: true}
	}
	return v.viewLocked()
}

// CloseList hides the overlay.
func (v *Viewer) CloseList() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch s := v.state.(type) {
	case Closed:
		v.state = Closed{}
	case Open:
		s.ReturnToList = false
		v.state = s
	}
	return v.viewLocked()
}

// Select opens the artwork with id. An unknown id leaves the state as it
// was and returns apperr.ErrNotFound.
func (v *Viewer) Select(id int) (View, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, ok := v.lookup(id)
	if !ok || a == nil {
		return v.viewLocked(), fmt.Errorf("artwork %d: %w", id, apperr.ErrNotFound)
	}

	returnToList := false
	switch s := v.state.(type) {
	case Closed:
		returnToList = s.ListOpen
	case Open:
		returnToList = s.ReturnToList
		if s.ArtworkID == id {
			return v.viewLocked(), nil
		}
	}
	v.state = Open{ArtworkID: id, ReturnToList: returnToList}
	v.startPrefetchLocked(a)
	return v.viewLocked(), nil
}

// NavigateArtwork moves to the adjacent artwork of the displayed list
// according to the policy. At an edge under PolicyStop, or when the open
// artwork is not in the displayed list, it is a no-op.
func (v *Viewer) NavigateArtwork(d Direction) (View, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, _, ok := v.openLocked()
	if !ok {
		return v.viewLocked(), ErrNotOpen
	}
	i := v.indexLocked(s.ArtworkID)
	j, moved := v.policy.step(i, len(v.list), d)
	if !moved {
		return v.viewLocked(), nil
	}

	next := v.list[j]
	a, ok := v.lookup(next.ID)
	if !ok || a == nil {
		return v.viewLocked(), nil
	}
	v.state = Open{ArtworkID: a.ID, ReturnToList: s.ReturnToList}
	v.startPrefetchLocked(a)
	return v.viewLocked(), nil
}

// NavigateImage cycles through the open artwork's images.
func (v *Viewer) NavigateImage(d Direction) (View, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, a, ok := v.openLocked()
	if !ok {
		return v.viewLocked(), ErrNotOpen
	}
	s.SubImage = cycle(s.SubImage, len(a.AllImages()), d)
	v.state = s
	return v.viewLocked(), nil
}

// Close closes the modal. An artwork opened from the overlay returns to
// the overlay.
func (v *Viewer) Close() View {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.state.(Open); ok {
		v.state = Closed{ListOpen: s.ReturnToList}
		v.stopPrefetchLocked()
	}
	return v.viewLocked()
}

// Release cancels any prefetch in flight and waits for it to return.
// The viewer remains usable afterwards.
func (v *Viewer) Release() {
	v.mu.Lock()
	v.stopPrefetchLocked()
	v.mu.Unlock()
	v.prefetching.Wait()
}

// openLocked returns the open state and its artwork when the artwork still
// exists. An open state whose artwork vanished is collapsed to Closed.
// Callers use the returned artwork rather than looking it up again: the
// catalog may be swapped between two lookups.
func (v *Viewer) openLocked() (Open, *models.Artwork, bool) {
	s, ok := v.state.(Open)
	if !ok {
		return Open{}, nil, false
	}
	a, found := v.lookup(s.ArtworkID)
	if !found || a == nil {
		v.state = Closed{ListOpen: s.ReturnToList}
		v.stopPrefetchLocked()
		return Open{}, nil, false
	}
	return s, a, true
}

func (v *Viewer) indexLocked(id int) int {
	for i := range v.list {
		if v.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (v *Viewer) viewLocked() View {
	view := View{Total: len(v.list)}
	switch s := v.state.(type) {
	case Closed:
		view.ListOpen = s.ListOpen
		return view
	case Open:
		a, ok := v.lookup(s.ArtworkID)
		if !ok || a == nil {
			view.ListOpen = s.ReturnToList
			return view
		}
		images := a.AllImages()
		sub := s.SubImage
		if sub >= len(images) {
			sub = 0
		}
		i := v.indexLocked(s.ArtworkID)
		_, hasPrev := v.policy.step(i, len(v.list), Prev)
		_, hasNext := v.policy.step(i, len(v.list), Next)

		view.Open = true
		view.Artwork = a
		view.SubImage = sub
		view.Image = images[sub]
		view.ImageCount = len(images)
		view.ReturnToList = s.ReturnToList
		view.Position = i
		view.HasPrev = hasPrev
		view.HasNext = hasNext
	}
	return view
}

func (v *Viewer) startPrefetchLocked(a *models.Artwork) {
	v.stopPrefetchLocked()
	ctx, cancel := context.WithCancel(context.Background())
	v.cancelPrefetch = cancel

	images := a.AllImages()
	id := a.ID
	v.prefetching.Add(1)
	go func() {
		defer v.prefetching.Done()
		if err := v.prefetcher.Prefetch(ctx, images); err != nil && ctx.Err() == nil {
			v.logger.Debug("viewer: prefetch failed", slog.Int("artwork", id), slog.String("error", err.Error()))
		}
	}()
}

func (v *Viewer) stopPrefetchLocked() {
	if v.cancelPrefetch != nil {
		v.cancelPrefetch()
		v.cancelPrefetch = nil
	}
}
