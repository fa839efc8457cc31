// Package models defines the domain types for the portfolio catalog.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Artwork is a single gallery entry. Artworks are immutable once loaded.
type Artwork struct {
	ID             int         `json:"id"`
	Title          string      `json:"title"`
	Type           ArtworkType `json:"type"`
	Image          string      `json:"image"`
	Description    string      `json:"description"`
	Tags           []string    `json:"tags"`
	Date           string      `json:"date,omitempty"`
	Software       []string    `json:"software,omitempty"`
	Style          string      `json:"style,omitempty"`
	Client         string      `json:"client,omitempty"`
	Length         string      `json:"length,omitempty"`
	Scope          string      `json:"scope,omitempty"`
	ArtstationLink string      `json:"artstationLink,omitempty"`
	SubImages      []string    `json:"subImages,omitempty"`
}

// AllImages returns the primary image followed by the sub-images.
func (a *Artwork) AllImages() []string {
	out := make([]string, 0, 1+len(a.SubImages))
	out = append(out, a.Image)
	return append(out, a.SubImages...)
}

// HasSoftware reports whether the artwork lists software s.
func (a *Artwork) HasSoftware(s string) bool {
	for _, v := range a.Software {
		if v == s {
			return true
		}
	}
	return false
}

// HasTag reports whether the artwork carries tag t.
func (a *Artwork) HasTag(t string) bool {
	for _, v := range a.Tags {
		if v == t {
			return true
		}
	}
	return false
}

// ArtworkType is either a plain string or an object {name, id} in fixtures.
// The shape read is kept so that re-encoding round-trips.
type ArtworkType struct {
	Name string
	ID   *int

	object bool
}

// TypeName builds a plain string type.
func TypeName(name string) ArtworkType {
	return ArtworkType{Name: name}
}

// String returns the display name.
func (t ArtworkType) String() string {
	return t.Name
}

// UnmarshalJSON accepts "Concept Art" or {"name": "Concept Art", "id": 3}.
func (t *ArtworkType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ArtworkType{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ArtworkType{Name: s}
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		ID   *int   `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("artwork type: %w", err)
	}
	*t = ArtworkType{Name: obj.Name, ID: obj.ID, object: true}
	return nil
}

// MarshalJSON writes the type back in the shape it was read.
func (t ArtworkType) MarshalJSON() ([]byte, error) {
	if !t.object && t.ID == nil {
		return json.Marshal(t.Name)
	}
	return json.Marshal(struct {
		Name string `json:"name"`
		ID   *int   `json:"id,omitempty"`
	}{t.Name, t.ID})
}
