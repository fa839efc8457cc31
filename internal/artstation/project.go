package artstation

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/starford/designa/internal/models"
)

type projectPage struct {
	Data []Project `json:"data"`
}

// Project is one entry of the user's project listing.
type Project struct {
	ID          int    `json:"id"`
	HashID      string `json:"hash_id"`
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	PublishedAt string `json:"published_at"`
}

// Published parses PublishedAt. Unparsable values sort last.
func (p Project) Published() time.Time {
	t, err := time.Parse(time.RFC3339, p.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ProjectDetails is the subset of a project document the importer reads.
type ProjectDetails struct {
	HashID          string             `json:"hash_id"`
	Title           string             `json:"title"`
	Permalink       string             `json:"permalink"`
	Description     string             `json:"description"`
	DescriptionHTML string             `json:"description_html"`
	Tags            []string           `json:"tags"`
	Medium          models.ArtworkType `json:"medium"`
	SoftwareItems   names              `json:"software_items"`
	Tools           names              `json:"tools"`
	SoftwareUsed    names              `json:"software_used"`
	MediumsUsed     names              `json:"mediums_used"`
	CoverURL        string             `json:"cover_url"`
	Assets          []Asset            `json:"assets"`
}

// Software returns the first non-empty of the software lists.
func (d *ProjectDetails) Software() []string {
	for _, l := range []names{d.SoftwareItems, d.Tools, d.SoftwareUsed, d.MediumsUsed} {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

// Asset is one media item of a project.
type Asset struct {
	ID            int    `json:"id"`
	AssetType     string `json:"asset_type"`
	HasImage      bool   `json:"has_image"`
	Cover         bool   `json:"cover"`
	ImageURL      string `json:"image_url"`
	Image         string `json:"image"`
	URL           string `json:"url"`
	SmallImageURL string `json:"small_image_url"`
	ThumbURL      string `json:"thumb_url"`
}

// Source returns the best available image URL.
func (a Asset) Source() string {
	for _, u := range []string{a.ImageURL, a.Image, a.URL, a.SmallImageURL, a.ThumbURL} {
		if u != "" {
			return u
		}
	}
	return ""
}

// names decodes a list whose items are either strings or {"name": ...}.
type names []string

func (n *names) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(names, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		}
	}
	*n = out
	return nil
}
