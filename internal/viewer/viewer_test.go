package viewer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/designa/internal/apperr"
	"github.com/starford/designa/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func three() []models.Artwork {
	return []models.Artwork{
		{ID: 1, Title: "one", Image: "/1.jpg"},
		{ID: 2, Title: "two", Image: "/2.jpg", SubImages: []string{"/2b.jpg", "/2c.jpg"}},
		{ID: 3, Title: "three", Image: "/3.jpg"},
	}
}

func lookupIn(list []models.Artwork) LookupFunc {
	return func(id int) (*models.Artwork, bool) {
		for i := range list {
			if list[i].ID == id {
				return &list[i], true
			}
		}
		return nil, false
	}
}

func newViewer(t *testing.T, list []models.Artwork, opts ...Option) *Viewer {
	t.Helper()
	v := New(lookupIn(list), opts...)
	v.SetList(list)
	t.Cleanup(v.Release)
	return v
}

func openID(t *testing.T, v *Viewer) int {
	t.Helper()
	s, ok := v.State().(Open)
	require.True(t, ok, "expected Open, got %#v", v.State())
	return s.ArtworkID
}

func TestNavigateArtwork_StopPolicy(t *testing.T) {
	v := newViewer(t, three(), WithPolicy(PolicyStop))

	_, err := v.Select(2)
	require.NoError(t, err)

	view, err := v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 3, openID(t, v))
	assert.False(t, view.HasNext)
	assert.True(t, view.HasPrev)

	_, err = v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 3, openID(t, v), "next on the last artwork must be a no-op")

	_, _ = v.NavigateArtwork(Prev)
	_, _ = v.NavigateArtwork(Prev)
	view, _ = v.NavigateArtwork(Prev)
	assert.Equal(t, 1, openID(t, v), "prev on the first artwork must be a no-op")
	assert.False(t, view.HasPrev)
}

func TestNavigateArtwork_WrapPolicy(t *testing.T) {
	v := newViewer(t, three(), WithPolicy(PolicyWrap))

	_, err := v.Select(2)
	require.NoError(t, err)

	_, err = v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 3, openID(t, v))

	view, err := v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 1, openID(t, v), "next on the last artwork wraps to the first")
	assert.True(t, view.HasPrev)
	assert.True(t, view.HasNext)

	_, _ = v.NavigateArtwork(Prev)
	assert.Equal(t, 3, openID(t, v), "prev on the first artwork wraps to the last")
}

func TestNavigateArtwork_SingleItemWrapIsNoop(t *testing.T) {
	list := three()[:1]
	v := newViewer(t, list, WithPolicy(PolicyWrap))
	_, err := v.Select(1)
	require.NoError(t, err)

	view, err := v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 1, openID(t, v))
	assert.False(t, view.HasNext)
}

func TestNavigateArtwork_ResetsSubImage(t *testing.T) {
	v := newViewer(t, three())
	_, err := v.Select(2)
	require.NoError(t, err)
	_, err = v.NavigateImage(Next)
	require.NoError(t, err)
	require.Equal(t, 1, v.State().(Open).SubImage)

	_, err = v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 0, v.State().(Open).SubImage)
}

func TestNavigateArtwork_UsesDisplayedList(t *testing.T) {
	all := three()
	v := newViewer(t, all, WithPolicy(PolicyStop))
	v.SetList([]models.Artwork{all[0], all[2]})

	_, err := v.Select(1)
	require.NoError(t, err)
	_, err = v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 3, openID(t, v), "artwork 2 is filtered out of the displayed list")

	_, err = v.Select(2)
	require.NoError(t, err)
	view, err := v.NavigateArtwork(Next)
	require.NoError(t, err)
	assert.Equal(t, 2, openID(t, v), "artwork outside the displayed list cannot navigate")
	assert.Equal(t, -1, view.Position)
}

func TestNavigate_RequiresOpen(t *testing.T) {
	v := newViewer(t, three())

	_, err := v.NavigateArtwork(Next)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = v.NavigateImage(Next)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.Equal(t, Closed{}, v.State())
}

func TestNavigateImage_Cycles(t *testing.T) {
	v := newViewer(t, three())
	_, err := v.Select(2)
	require.NoError(t, err)

	view, _ := v.NavigateImage(Prev)
	assert.Equal(t, 2, view.SubImage, "prev from 0 goes to the last image")
	assert.Equal(t, "/2c.jpg", view.Image)
	assert.Equal(t, 3, view.ImageCount)

	view, _ = v.NavigateImage(Next)
	assert.Equal(t, 0, view.SubImage, "next from the last image goes to 0")

	_, err = v.Select(1)
	require.NoError(t, err)
	view, _ = v.NavigateImage(Next)
	assert.Equal(t, 0, view.SubImage, "a single image cycles onto itself")
}

func TestSelectUnknown(t *testing.T) {
	v := newViewer(t, three())
	view, err := v.Select(42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, view.Open)
	assert.Equal(t, Closed{}, v.State())
}

func TestClose(t *testing.T) {
	v := newViewer(t, three())
	_, err := v.Select(1)
	require.NoError(t, err)

	view := v.Close()
	assert.False(t, view.Open)
	assert.Nil(t, view.Artwork)
	assert.Equal(t, Closed{}, v.State())
}

func TestClose_ReturnsToList(t *testing.T) {
	v := newViewer(t, three())
	v.OpenList()

	view, err := v.Select(3)
	require.NoError(t, err)
	assert.True(t, view.ReturnToList)
	assert.False(t, view.ListOpen, "overlay hides while the modal is open")

	view = v.Close()
	assert.True(t, view.ListOpen)
	assert.Equal(t, Closed{ListOpen: true}, v.State())

	v.CloseList()
	assert.Equal(t, Closed{}, v.State())
}

func TestView_ArtworkRemoved(t *testing.T) {
	list := three()
	present := true
	lookup := func(id int) (*models.Artwork, bool) {
		if id == 2 && !present {
			return nil, false
		}
		return lookupIn(list)(id)
	}
	v := New(lookup)
	t.Cleanup(v.Release)
	v.SetList(list)

	_, err := v.Select(2)
	require.NoError(t, err)
	present = false

	assert.False(t, v.View().Open)
	_, err = v.NavigateImage(Next)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.Equal(t, Closed{}, v.State())
}

type blockingPrefetcher struct {
	mu        sync.Mutex
	calls     [][]string
	cancelled int
}

func (p *blockingPrefetcher) Prefetch(ctx context.Context, images []string) error {
	p.mu.Lock()
	p.calls = append(p.calls, images)
	p.mu.Unlock()
	<-ctx.Done()
	p.mu.Lock()
	p.cancelled++
	p.mu.Unlock()
	return ctx.Err()
}

// vanishingLookup finds artworks for the first n calls and nothing after,
// like a catalog reload that drops everything mid-operation.
func vanishingLookup(list []models.Artwork, n int32) LookupFunc {
	var calls atomic.Int32
	find := lookupIn(list)
	return func(id int) (*models.Artwork, bool) {
		if calls.Add(1) > n {
			return nil, false
		}
		return find(id)
	}
}

func TestNavigate_ArtworkVanishesBetweenLookups(t *testing.T) {
	for n := int32(1); n <= 6; n++ {
		v := New(vanishingLookup(three(), n))
		v.SetList(three())

		require.NotPanics(t, func() {
			_, _ = v.Select(2)
			_, _ = v.NavigateImage(Next)
			_, _ = v.NavigateImage(Prev)
			_, _ = v.NavigateArtwork(Next)
			_ = v.View()
		}, "lookup succeeding %d times", n)

		view := v.View()
		assert.False(t, view.Open, "lookup succeeding %d times", n)
		v.Release()
	}
}

func TestNavigateImage_UsesArtworkFoundWhenOpen(t *testing.T) {
	// Select and its view take two lookups, the open check a third.
	v := New(vanishingLookup(three(), 3))
	v.SetList(three())
	t.Cleanup(v.Release)

	_, err := v.Select(2)
	require.NoError(t, err)

	view, err := v.NavigateImage(Next)
	require.NoError(t, err)
	assert.False(t, view.Open)

	s, ok := v.State().(Open)
	require.True(t, ok)
	assert.Equal(t, 1, s.SubImage)
}

func TestPrefetch_CancelledOnChange(t *testing.T) {
	p := &blockingPrefetcher{}
	v := New(lookupIn(three()), WithPrefetcher(p))
	v.SetList(three())

	_, err := v.Select(2)
	require.NoError(t, err)
	_, err = v.NavigateArtwork(Next)
	require.NoError(t, err)
	v.Close()
	v.Release()

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.calls, 2)
	assert.ElementsMatch(t, [][]string{{"/2.jpg", "/2b.jpg", "/2c.jpg"}, {"/3.jpg"}}, p.calls)
	assert.Equal(t, 2, p.cancelled)
}

func TestParse(t *testing.T) {
	d, err := ParseDirection("prev")
	require.NoError(t, err)
	assert.Equal(t, Prev, d)
	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStop, p)
	_, err = ParsePolicy("bounce")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
