// Package gallery derives filtered and ordered views of the catalog.
// Every function is pure: inputs are never mutated and results are fresh slices.
package gallery

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/starford/designa/internal/apperr"
	"github.com/starford/designa/internal/models"
)

// All is the filter value meaning "no constraint".
const All = "All"

// ThumbnailSize controls the gallery grid density.
type ThumbnailSize string

// Thumbnail sizes.
const (
	SizeSmall    ThumbnailSize = "small"
	SizeMedium   ThumbnailSize = "medium"
	SizeLarge    ThumbnailSize = "large"
	SizeEnormous ThumbnailSize = "enormous"
)

// DefaultSize is used when no size was requested.
const DefaultSize = SizeMedium

// ParseThumbnailSize parses s. An empty string yields DefaultSize.
func ParseThumbnailSize(s string) (ThumbnailSize, error) {
	switch ThumbnailSize(s) {
	case "":
		return DefaultSize, nil
	case SizeSmall, SizeMedium, SizeLarge, SizeEnormous:
		return ThumbnailSize(s), nil
	}
	return "", fmt.Errorf("thumbnail size %q: %w", s, apperr.ErrInvalidInput)
}

// Columns returns the number of grid columns on a wide viewport.
func (s ThumbnailSize) Columns() int {
	switch s {
	case SizeSmall:
		return 5
	case SizeLarge:
		return 3
	case SizeEnormous:
		return 2
	default:
		return 4
	}
}

// ArtworkFilter is the gallery filter selection. Empty fields and All mean
// no constraint.
type ArtworkFilter struct {
	Software string
	Type     string
	Tag      string
	Size     ThumbnailSize
}

func active(v string) bool {
	return v != "" && v != All
}

// Matches reports whether a satisfies every active predicate of f.
func (f ArtworkFilter) Matches(a *models.Artwork) bool {
	if active(f.Type) && a.Type.String() != f.Type {
		return false
	}
	if active(f.Software) && !a.HasSoftware(f.Software) {
		return false
	}
	if active(f.Tag) && !a.HasTag(f.Tag) {
		return false
	}
	return true
}

// FilterArtworks returns the artworks matching f in list order. With a
// software filter the result is stable-sorted by OtherSoftwareCount, so
// artworks made purely with the selected tool come first.
func FilterArtworks(list []models.Artwork, f ArtworkFilter) []models.Artwork {
	out := make([]models.Artwork, 0, len(list))
	for i := range list {
		if f.Matches(&list[i]) {
			out = append(out, list[i])
		}
	}
	if active(f.Software) {
		sort.SliceStable(out, func(i, j int) bool {
			return OtherSoftwareCount(&out[i], f.Software) < OtherSoftwareCount(&out[j], f.Software)
		})
	}
	return out
}

// OtherSoftwareCount counts the software entries of a other than selected.
func OtherSoftwareCount(a *models.Artwork, selected string) int {
	n := 0
	for _, s := range a.Software {
		if s != selected {
			n++
		}
	}
	return n
}

// SoftwareOptions returns the distinct trimmed software names, sorted, with All first.
func SoftwareOptions(list []models.Artwork) []string {
	set := make(map[string]struct{})
	for _, a := range list {
		for _, s := range a.Software {
			if v := strings.TrimSpace(s); v != "" {
				set[v] = struct{}{}
			}
		}
	}
	return withAll(set)
}

// TypeOptions returns the distinct artwork type names, sorted, with All first.
func TypeOptions(list []models.Artwork) []string {
	set := make(map[string]struct{})
	for _, a := range list {
		if v := a.Type.String(); v != "" {
			set[v] = struct{}{}
		}
	}
	return withAll(set)
}

// Tags returns the distinct tags, sorted.
func Tags(list []models.Artwork) []string {
	set := make(map[string]struct{})
	for _, a := range list {
		for _, t := range a.Tags {
			if v := strings.TrimSpace(t); v != "" {
				set[v] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func withAll(set map[string]struct{}) []string {
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	return append([]string{All}, vals...)
}

// ByTag returns the artworks carrying tag.
func ByTag(list []models.Artwork, tag string) []models.Artwork {
	return FilterArtworks(list, ArtworkFilter{Tag: tag})
}

// ByType returns the artworks of the given type name.
func ByType(list []models.Artwork, typ string) []models.Artwork {
	return FilterArtworks(list, ArtworkFilter{Type: typ})
}

// FindArtwork returns the artwork with id, or apperr.ErrNotFound.
func FindArtwork(list []models.Artwork, id int) (models.Artwork, error) {
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Artwork{}, fmt.Errorf("artwork %d: %w", id, apperr.ErrNotFound)
}

// IndexOf returns the position of the artwork with id in list, or -1.
func IndexOf(list []models.Artwork, id int) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Preview returns at most n artworks from the head of list.
func Preview(list []models.Artwork, n int) []models.Artwork {
	if n < 0 {
		n = 0
	}
	if n > len(list) {
		n = len(list)
	}
	return slices.Clone(list[:n])
}
