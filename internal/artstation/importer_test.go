package artstation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/designa/internal/catalog"
)

type fakeSite struct {
	srv      *httptest.Server
	pages    [][]Project
	details  map[string]func(base string) any
	hits     map[string]*atomic.Int32
	failures map[string]int
	referers chan string
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()
	f := &fakeSite{
		details:  map[string]func(string) any{},
		hits:     map[string]*atomic.Int32{},
		failures: map[string]int{},
		referers: make(chan string, 64),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/kit/projects.json", func(w http.ResponseWriter, r *http.Request) {
		key := "page" + r.URL.Query().Get("page")
		if f.fail(key, w) {
			return
		}
		select {
		case f.referers <- r.Header.Get("Referer"):
		default:
		}
		var page int
		_, _ = fmt.Sscan(r.URL.Query().Get("page"), &page)
		data := []Project{}
		if page >= 1 && page <= len(f.pages) {
			data = f.pages[page-1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
	mux.HandleFunc("GET /projects/{file}", func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("file")
		hash = hash[:len(hash)-len(filepath.Ext(hash))]
		if f.fail("project-"+hash, w) {
			return
		}
		build, ok := f.details[hash]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(build(f.srv.URL))
	})
	mux.HandleFunc("GET /img/{name}", func(w http.ResponseWriter, r *http.Request) {
		if f.fail("img-"+r.PathValue("name"), w) {
			return
		}
		_, _ = io.WriteString(w, "jpeg:"+r.PathValue("name"))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// fail answers 500 while the configured failure budget for key lasts.
func (f *fakeSite) fail(key string, w http.ResponseWriter) bool {
	if f.hits[key] == nil {
		return false
	}
	n := f.hits[key].Add(1)
	if int(n) <= f.failures[key] {
		http.Error(w, "upstream busy", http.StatusInternalServerError)
		return true
	}
	return false
}

func (f *fakeSite) track(key string, failures int) *atomic.Int32 {
	c := &atomic.Int32{}
	f.hits[key] = c
	f.failures[key] = failures
	return c
}

func (f *fakeSite) client(opts ...Option) *Client {
	base := []Option{
		WithBaseURL(f.srv.URL),
		WithRetry(3, 0),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New("kit", append(base, opts...)...)
}

func twoProjects(f *fakeSite) {
	f.pages = [][]Project{
		{{ID: 10, HashID: "old", Title: "Old Harbor", PublishedAt: "2021-03-01T10:00:00.000-05:00"}},
		{{ID: 11, HashID: "new", Title: "New Knight", PublishedAt: "2024-06-01T10:00:00Z"}},
	}
	f.details["old"] = func(string) any {
		return map[string]any{
			"hash_id":   "old",
			"title":     "Old Harbor",
			"cover_url": f.srv.URL + "/img/old-cover",
			"assets":    []any{},
			"medium":    nil,
		}
	}
	f.details["new"] = func(base string) any {
		return map[string]any{
			"hash_id":     "new",
			"title":       "New Knight",
			"permalink":   "https://www.artstation.com/artwork/new",
			"description": "<p>Armor&nbsp;study &amp; turnaround</p>",
			"tags":        []string{"knight", "armor", "fantasy", "extra"},
			"medium":      map[string]any{"name": "Character Design", "id": 4},
			"tools":       []any{map[string]any{"name": "ZBrush"}, "Photoshop"},
			"assets": []any{
				map[string]any{"has_image": true, "asset_type": "image", "image_url": base + "/img/detail-a"},
				map[string]any{"has_image": true, "asset_type": "cover", "image_url": base + "/img/cover"},
				map[string]any{"has_image": false, "asset_type": "video", "url": base + "/img/clip"},
				map[string]any{"has_image": true, "asset_type": "image", "small_image_url": base + "/img/detail-b"},
			},
		}
	}
}

func TestImport_NewestFirstWithImages(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)
	imagesDir := filepath.Join(t.TempDir(), "gallery_artworks")

	list, err := f.client().Import(context.Background(), ImportOptions{ImagesDir: imagesDir})
	require.NoError(t, err)
	require.Len(t, list, 2)

	knight := list[0]
	assert.Equal(t, 1, knight.ID)
	assert.Equal(t, "New Knight", knight.Title)
	assert.Equal(t, "Character Design", knight.Type.String())
	assert.Equal(t, "/static/gallery_artworks/image1_1.jpg", knight.Image)
	assert.Equal(t, []string{"/static/gallery_artworks/image1_2.jpg", "/static/gallery_artworks/image1_3.jpg"}, knight.SubImages)
	assert.Equal(t, "Armor study & turnaround", knight.Description)
	assert.Equal(t, []string{"knight", "armor", "fantasy"}, knight.Tags)
	assert.Equal(t, []string{"ZBrush", "Photoshop"}, knight.Software)
	assert.Equal(t, "https://www.artstation.com/artwork/new", knight.ArtstationLink)

	harbor := list[1]
	assert.Equal(t, 2, harbor.ID)
	assert.Equal(t, "Illustration", harbor.Type.String())
	assert.Empty(t, harbor.SubImages)
	assert.Equal(t, "https://www.artstation.com/artwork/old", harbor.ArtstationLink)

	for name, want := range map[string]string{
		"image1_1.jpg": "jpeg:cover",
		"image1_2.jpg": "jpeg:detail-a",
		"image1_3.jpg": "jpeg:detail-b",
		"image2_1.jpg": "jpeg:old-cover",
	} {
		data, err := os.ReadFile(filepath.Join(imagesDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}

	assert.Equal(t, "https://www.artstation.com/kit", <-f.referers)
}

func TestImport_ResultIsAValidCatalog(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)

	list, err := f.client().Import(context.Background(), ImportOptions{ImagesDir: t.TempDir()})
	require.NoError(t, err)

	dataDir := t.TempDir()
	fs, err := catalog.NewFS(dataDir)
	require.NoError(t, err)
	require.NoError(t, catalog.WriteArtworks(fs, list))

	snap, err := catalog.Load(fs)
	require.NoError(t, err)
	require.Len(t, snap.Artworks, 2)
	a, ok := snap.Artwork(1)
	require.True(t, ok)
	assert.Equal(t, "Character Design", a.Type.String())
}

func TestImport_RetriesServerErrors(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)
	pageHits := f.track("page1", 2)
	coverHits := f.track("img-cover", 1)

	list, err := f.client().Import(context.Background(), ImportOptions{ImagesDir: t.TempDir()})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int32(3), pageHits.Load())
	assert.Equal(t, int32(2), coverHits.Load())
}

func TestImport_SkipsFailedProject(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)
	delete(f.details, "new")

	list, err := f.client().Import(context.Background(), ImportOptions{ImagesDir: t.TempDir()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, "Old Harbor", list[0].Title)
}

func TestImport_NoProjects(t *testing.T) {
	f := newFakeSite(t)

	_, err := f.client().Import(context.Background(), ImportOptions{ImagesDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoProjects)
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)
	hits := f.track("page1", 100)

	_, err := f.client().Projects(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	f := newFakeSite(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	_, err := f.client(WithBaseURL(srv.URL)).Project(context.Background(), "gone")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CancelDuringBackoff(t *testing.T) {
	f := newFakeSite(t)
	twoProjects(f)
	f.track("page1", 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.client(WithRetry(3, time.Hour)).Projects(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Projects did not return after cancel")
	}
}

func TestNames_StringsOrObjects(t *testing.T) {
	var d ProjectDetails
	require.NoError(t, json.Unmarshal([]byte(`{
		"software_items": null,
		"tools": [],
		"software_used": ["Blender", {"name": "Substance Painter"}, {"name": ""}, ""],
		"mediums_used": ["Digital 2D"]
	}`), &d))
	assert.Equal(t, []string{"Blender", "Substance Painter"}, d.Software())
}

func TestPickImages(t *testing.T) {
	assets := []Asset{
		{HasImage: true, AssetType: "image", ImageURL: "a"},
		{HasImage: true, AssetType: "image", Image: "b"},
		{HasImage: false, AssetType: "video", URL: "v"},
		{HasImage: true, AssetType: "image", ThumbURL: "c"},
	}
	cover, subs := pickImages(assets, 1)
	assert.Equal(t, "a", cover.Source())
	assert.Equal(t, []string{"b"}, subs)

	cover, subs = pickImages(nil, 6)
	assert.Empty(t, cover.Source())
	assert.Empty(t, subs)
}
