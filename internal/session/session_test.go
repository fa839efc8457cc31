package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/contact"
	"github.com/starford/designa/internal/gallery"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/viewer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func snapshot(version string, artworks ...models.Artwork) *catalog.Snapshot {
	return &catalog.Snapshot{Artworks: artworks, Version: version}
}

func newRegistry(snap **catalog.Snapshot, idle time.Duration) *Registry {
	factory := func(id string) (*viewer.Viewer, *contact.Controller) {
		v := viewer.New(func(aid int) (*models.Artwork, bool) { return (*snap).Artwork(aid) })
		c := contact.NewController(contact.Options{
			VisitorID: id,
			Sender: contact.SenderFunc(func(_ context.Context, _ contact.Message) (int, error) {
				return 200, nil
			}),
		})
		return v, c
	}
	return NewRegistry(factory, idle)
}

func TestRegistry_GetCreatesOnce(t *testing.T) {
	snap := snapshot("v1")
	r := newRegistry(&snap, time.Minute)
	defer r.Close()

	id := uuid.NewString()
	s1, created := r.Get(id)
	require.True(t, created)
	assert.Equal(t, id, s1.ID)

	s2, created := r.Get(id)
	assert.False(t, created)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_InvalidIDGetsFreshUUID(t *testing.T) {
	snap := snapshot("v1")
	r := newRegistry(&snap, time.Minute)
	defer r.Close()

	s, created := r.Get("not-a-uuid")
	require.True(t, created)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", s.ID)

	_, ok := r.Lookup("not-a-uuid")
	assert.False(t, ok)
}

func TestRegistry_Sweep(t *testing.T) {
	snap := snapshot("v1")
	r := newRegistry(&snap, time.Minute)
	defer r.Close()

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }
	old, _ := r.Get(uuid.NewString())

	r.now = func() time.Time { return base.Add(50 * time.Second) }
	fresh, _ := r.Get(uuid.NewString())

	n := r.Sweep(base.Add(90 * time.Second))
	assert.Equal(t, 1, n)
	_, ok := r.Lookup(old.ID)
	assert.False(t, ok)
	_, ok = r.Lookup(fresh.ID)
	assert.True(t, ok)
}

func TestSession_FilterDrivesViewerList(t *testing.T) {
	a1 := models.Artwork{ID: 1, Image: "/1.jpg", Software: []string{"Blender", "Photoshop"}}
	a2 := models.Artwork{ID: 2, Image: "/2.jpg", Software: []string{"Photoshop"}}
	a3 := models.Artwork{ID: 3, Image: "/3.jpg", Software: []string{"ZBrush"}}
	snap := snapshot("v1", a1, a2, a3)
	r := newRegistry(&snap, time.Minute)
	defer r.Close()

	s, _ := r.Get(uuid.NewString())
	list := s.SetFilter(gallery.ArtworkFilter{Software: "Photoshop"}, snap)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ID, "pure Photoshop artwork sorts first")

	_, err := s.Viewer.Select(2)
	require.NoError(t, err)
	view, err := s.Viewer.NavigateArtwork(viewer.Next)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Artwork.ID)
	assert.Equal(t, 2, view.Total)

	snap = snapshot("v2", a1, a2, a3, models.Artwork{ID: 4, Image: "/4.jpg", Software: []string{"Photoshop"}})
	s.Sync(snap)
	assert.Equal(t, 3, s.Viewer.View().Total)
	assert.Equal(t, "Photoshop", s.Filter().Software)
}
