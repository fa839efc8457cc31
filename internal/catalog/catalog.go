// Package catalog loads the artwork and workshop fixtures into immutable
// snapshots and swaps them atomically on reload.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/designa/internal/checksum"
	"github.com/starford/designa/internal/models"
)

// Fixture file names.
const (
	ArtworksFile  = "artworks.json"
	WorkshopsFile = "workshops.json"
)

// Snapshot is a read-only view of the fixtures at one point in time.
// Callers must not mutate the slices.
type Snapshot struct {
	Artworks   []models.Artwork
	Workshops  []models.Workshop
	Categories []models.WorkshopCategory
	Version    string
	LoadedAt   time.Time
}

// Artwork returns the artwork with the given id.
func (s *Snapshot) Artwork(id int) (*models.Artwork, bool) {
	for i := range s.Artworks {
		if s.Artworks[i].ID == id {
			return &s.Artworks[i], true
		}
	}
	return nil, false
}

// Workshop returns the workshop with the given slug.
func (s *Snapshot) Workshop(slug string) (*models.Workshop, bool) {
	for i := range s.Workshops {
		if s.Workshops[i].Slug == slug {
			return &s.Workshops[i], true
		}
	}
	return nil, false
}

// Load reads and validates both fixtures. workshops.json is optional;
// artworks.json is not.
func Load(p Provider) (*Snapshot, error) {
	artData, err := p.Read(ArtworksFile)
	if err != nil {
		return nil, err
	}
	wsData, err := p.Read(WorkshopsFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return Parse(artData, wsData)
}

// Parse decodes and validates fixture contents. A nil wsData means no
// workshops.
func Parse(artData, wsData []byte) (*Snapshot, error) {
	var artworks []models.Artwork
	if err := json.Unmarshal(artData, &artworks); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", ArtworksFile, err)
	}
	if err := validateArtworks(artworks); err != nil {
		return nil, err
	}

	var wd models.WorkshopData
	if wsData != nil {
		if err := json.Unmarshal(wsData, &wd); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", WorkshopsFile, err)
		}
		if err := validateWorkshops(wd.Workshops); err != nil {
			return nil, err
		}
	}

	return &Snapshot{
		Artworks:   nonNil(artworks),
		Workshops:  nonNil(wd.Workshops),
		Categories: nonNil(wd.Categories),
		Version:    checksum.SumParts(artData, wsData),
		LoadedAt:   time.Now(),
	}, nil
}

// WriteArtworks encodes list, runs it through the same validation as a
// load and atomically replaces artworks.json.
func WriteArtworks(fs *FS, list []models.Artwork) error {
	data, err := json.MarshalIndent(nonNil(list), "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode %s: %w", ArtworksFile, err)
	}
	if _, err := Parse(data, nil); err != nil {
		return err
	}
	return fs.Write(ArtworksFile, append(data, '\n'))
}

func validateArtworks(list []models.Artwork) error {
	seen := make(map[int]struct{}, len(list))
	for _, a := range list {
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("catalog: %s: duplicate artwork id %d", ArtworksFile, a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.Image == "" {
			return fmt.Errorf("catalog: %s: artwork %d has no image", ArtworksFile, a.ID)
		}
	}
	return nil
}

func validateWorkshops(list []models.Workshop) error {
	ids := make(map[int]struct{}, len(list))
	slugs := make(map[string]struct{}, len(list))
	for _, w := range list {
		if _, dup := ids[w.ID]; dup {
			return fmt.Errorf("catalog: %s: duplicate workshop id %d", WorkshopsFile, w.ID)
		}
		ids[w.ID] = struct{}{}
		if _, dup := slugs[w.Slug]; dup || w.Slug == "" {
			return fmt.Errorf("catalog: %s: workshop %d has an empty or duplicate slug %q", WorkshopsFile, w.ID, w.Slug)
		}
		slugs[w.Slug] = struct{}{}
		if !models.ValidLevel(w.Level) {
			return fmt.Errorf("catalog: %s: workshop %d has unknown level %q", WorkshopsFile, w.ID, w.Level)
		}
		if _, _, err := models.ParseDateRange(w.DateRange); err != nil {
			return fmt.Errorf("catalog: %s: workshop %d: %w", WorkshopsFile, w.ID, err)
		}
	}
	return nil
}

// Catalog holds the current snapshot.
type Catalog struct {
	provider Provider
	current  atomic.Pointer[Snapshot]
	mu       sync.Mutex // serialises reloads
}

// New loads the fixtures once and returns a Catalog serving them.
func New(p Provider) (*Catalog, error) {
	snap, err := Load(p)
	if err != nil {
		return nil, err
	}
	c := &Catalog{provider: p}
	c.current.Store(snap)
	return c, nil
}

// Snapshot returns the current snapshot. It is never nil.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Root returns the fixture directory.
func (c *Catalog) Root() string {
	return c.provider.Root()
}

// Reload re-reads the fixtures. The active snapshot is only replaced when
// the new fixtures are valid and their content differs.
func (c *Catalog) Reload() (changed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := Load(c.provider)
	if err != nil {
		return false, err
	}
	if snap.Version == c.current.Load().Version {
		return false, nil
	}
	c.current.Store(snap)
	return true, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
