package artstation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/designa/internal/models"
)

// ErrNoProjects is returned when the user has no public projects.
var ErrNoProjects = errors.New("artstation: no projects found")

const defaultType = "Illustration"

// ImportOptions controls where images land and how entries are shaped.
type ImportOptions struct {
	// ImagesDir receives image{n}_{k}.jpg files. Created if missing.
	ImagesDir string
	// URLPrefix is prepended to file names in the artwork entries.
	URLPrefix string
	// MaxSubImages caps the extra images per artwork.
	MaxSubImages int
	// MaxTags caps the tags per artwork.
	MaxTags int
	// Parallel bounds concurrent image downloads within one project.
	Parallel int
}

func (o *ImportOptions) defaults() {
	if o.URLPrefix == "" {
		o.URLPrefix = "/static/gallery_artworks"
	}
	if o.MaxSubImages <= 0 {
		o.MaxSubImages = 6
	}
	if o.MaxTags <= 0 {
		o.MaxTags = 3
	}
	if o.Parallel <= 0 {
		o.Parallel = 3
	}
}

// Import fetches every project, newest first, downloads its images and
// returns the artwork entries numbered from 1. A project that fails is
// skipped with a warning.
func (c *Client) Import(ctx context.Context, opts ImportOptions) ([]models.Artwork, error) {
	opts.defaults()
	if err := os.MkdirAll(opts.ImagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("artstation: images dir: %w", err)
	}

	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Published().After(projects[j].Published())
	})

	artworks := make([]models.Artwork, 0, len(projects))
	for _, p := range projects {
		a, err := c.importProject(ctx, p, len(artworks)+1, opts)
		if err != nil {
			if isContextErr(err) {
				return nil, err
			}
			c.logger.Warn("artstation: skipping project",
				slog.String("title", p.Title),
				slog.String("hash_id", p.HashID),
				slog.String("error", err.Error()))
			continue
		}
		c.logger.Info("artstation: imported",
			slog.Int("id", a.ID),
			slog.String("title", a.Title),
			slog.Int("sub_images", len(a.SubImages)))
		artworks = append(artworks, *a)
	}
	return artworks, nil
}

func (c *Client) importProject(ctx context.Context, p Project, id int, opts ImportOptions) (*models.Artwork, error) {
	hashID := p.HashID
	if hashID == "" && p.Permalink != "" {
		hashID = path.Base(p.Permalink)
	}
	if hashID == "" {
		return nil, errors.New("project has no hash id")
	}
	d, err := c.Project(ctx, hashID)
	if err != nil {
		return nil, err
	}

	cover, subs := pickImages(d.Assets, opts.MaxSubImages)
	coverURL := cover.Source()
	if coverURL == "" {
		coverURL = d.CoverURL
	}
	if coverURL == "" {
		return nil, errors.New("project has no cover image")
	}

	files := make([]string, 1+len(subs))
	urls := append([]string{coverURL}, subs...)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, u := range urls {
		files[i] = fmt.Sprintf("image%d_%d.jpg", id, i+1)
		dest := filepath.Join(opts.ImagesDir, files[i])
		g.Go(func() error {
			return c.Download(gctx, u, dest)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := &models.Artwork{
		ID:             id,
		Title:          firstNonEmpty(d.Title, p.Title, fmt.Sprintf("Artwork %d", id)),
		Type:           models.TypeName(defaultType),
		Image:          opts.URLPrefix + "/" + files[0],
		Description:    stripHTML(firstNonEmpty(d.Description, d.DescriptionHTML)),
		Tags:           limit(d.Tags, opts.MaxTags),
		Software:       d.Software(),
		ArtstationLink: firstNonEmpty(d.Permalink, p.Permalink, DefaultBaseURL+"/artwork/"+firstNonEmpty(d.HashID, hashID)),
		SubImages:      make([]string, 0, len(subs)),
	}
	if d.Medium.Name != "" {
		a.Type = d.Medium
	}
	for _, f := range files[1:] {
		a.SubImages = append(a.SubImages, opts.URLPrefix+"/"+f)
	}
	return a, nil
}

// pickImages chooses the cover asset and up to max other image URLs.
// The cover is the asset flagged as such, else the first image, else the
// first asset of any kind.
func pickImages(assets []Asset, max int) (Asset, []string) {
	coverIdx := -1
	for i, a := range assets {
		if a.HasImage && (a.AssetType == "cover" || a.Cover) {
			coverIdx = i
			break
		}
	}
	if coverIdx < 0 {
		for i, a := range assets {
			if a.HasImage && a.AssetType == "image" {
				coverIdx = i
				break
			}
		}
	}
	if coverIdx < 0 && len(assets) > 0 {
		coverIdx = 0
	}

	var cover Asset
	if coverIdx >= 0 {
		cover = assets[coverIdx]
	}
	var subs []string
	for i, a := range assets {
		if len(subs) == max {
			break
		}
		if i == coverIdx || !a.HasImage || a.AssetType != "image" {
			continue
		}
		if u := a.Source(); u != "" {
			subs = append(subs, u)
		}
	}
	return cover, subs
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

func stripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(html.UnescapeString(s))
}

func limit(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
