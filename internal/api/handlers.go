package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/effects"
	"github.com/starford/designa/internal/gallery"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/session"
)

const defaultUpcomingLimit = 3

// CatalogPublisher announces catalog reload outcomes to live clients.
type CatalogPublisher interface {
	PublishCatalogEvent(kind, version string)
}

// SubmissionReader exposes the contact submission log.
type SubmissionReader interface {
	ListSubmissions(ctx context.Context, status string, limit, offset int) ([]models.Submission, int, error)
	SearchSubmissions(ctx context.Context, query string, limit int) ([]models.Submission, error)
}

// Deps are the collaborators of the API handlers. Catalog and Sessions are
// required.
type Deps struct {
	Catalog      *catalog.Catalog
	Sessions     *session.Registry
	Events       CatalogPublisher
	Submissions  SubmissionReader
	Ready        func(ctx context.Context) error
	PreviewCount int
	SecureCookie bool
	Effects      effects.Config
	Logger       *slog.Logger
	Now          func() time.Time
}

// Handler holds API route handlers.
type Handler struct {
	d Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PreviewCount <= 0 {
		d.PreviewCount = 6
	}
	return &Handler{d: d}
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}

// ListArtworks handles GET /api/artworks.
//
//	@Summary		List artworks matching the gallery filter
//	@Tags			artworks
//	@Produce		json
//	@Param			software	query		string	false	"Software, All for any"
//	@Param			type		query		string	false	"Artwork type, All for any"
//	@Param			tag			query		string	false	"Tag"
//	@Param			size		query		string	false	"Thumbnail size"	Enums(small, medium, large, enormous)
//	@Success		200			{object}	ArtworkListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/artworks [get]
func (h *Handler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := gallery.ParseThumbnailSize(q.Get("size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := gallery.ArtworkFilter{
		Software: q.Get("software"),
		Type:     q.Get("type"),
		Tag:      q.Get("tag"),
		Size:     size,
	}

	snap := h.d.Catalog.Snapshot()
	list := gallery.FilterArtworks(snap.Artworks, f)
	writeJSON(w, http.StatusOK, ArtworkListResponse{
		Artworks:        list,
		Total:           len(list),
		SoftwareOptions: gallery.SoftwareOptions(snap.Artworks),
		TypeOptions:     gallery.TypeOptions(snap.Artworks),
		Tags:            gallery.Tags(snap.Artworks),
		Size:            string(size),
		Columns:         size.Columns(),
		Version:         snap.Version,
	})
}

// PreviewArtworks handles GET /api/artworks/preview.
//
//	@Summary		First artworks for the home page grid
//	@Tags			artworks
//	@Produce		json
//	@Param			limit	query		int	false	"Number of artworks"
//	@Success		200		{object}	ArtworkListResponse
//	@Router			/artworks/preview [get]
func (h *Handler) PreviewArtworks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", h.d.PreviewCount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	snap := h.d.Catalog.Snapshot()
	list := gallery.Preview(snap.Artworks, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"artworks": list,
		"total":    len(snap.Artworks),
	})
}

// GetArtwork handles GET /api/artworks/{id}.
//
//	@Summary		Get a single artwork
//	@Tags			artworks
//	@Produce		json
//	@Param			id	path		int	true	"Artwork id"
//	@Success		200	{object}	models.Artwork
//	@Failure		404	{object}	errResponse
//	@Router			/artworks/{id} [get]
func (h *Handler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be an integer"))
		return
	}
	a, err := gallery.FindArtwork(h.d.Catalog.Snapshot().Artworks, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListWorkshops handles GET /api/workshops. Past workshops are hidden
// unless past=true; type is accepted as an alias of category.
//
//	@Summary		List workshops
//	@Tags			workshops
//	@Produce		json
//	@Param			category	query		string	false	"Category id, all for any"
//	@Param			level		query		string	false	"Level"
//	@Param			skill		query		string	false	"Skill"
//	@Param			past		query		bool	false	"Include past workshops"
//	@Success		200			{object}	WorkshopListResponse
//	@Router			/workshops [get]
func (h *Handler) ListWorkshops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := gallery.WorkshopFilter{
		Category: q.Get("category"),
		Level:    q.Get("level"),
		Skill:    q.Get("skill"),
	}
	if f.Category == "" {
		f.Category = q.Get("type")
	}
	if past, _ := strconv.ParseBool(q.Get("past")); !past {
		f.After = h.d.Now()
	}

	snap := h.d.Catalog.Snapshot()
	list := gallery.FilterWorkshops(snap.Workshops, f)
	writeJSON(w, http.StatusOK, WorkshopListResponse{
		Workshops:  list,
		Categories: snap.Categories,
		Total:      len(list),
	})
}

// UpcomingWorkshops handles GET /api/workshops/upcoming.
//
//	@Summary		Next workshops, earliest first
//	@Tags			workshops
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of workshops"
//	@Success		200		{object}	WorkshopListResponse
//	@Router			/workshops/upcoming [get]
func (h *Handler) UpcomingWorkshops(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultUpcomingLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	snap := h.d.Catalog.Snapshot()
	list := gallery.UpcomingWorkshops(snap.Workshops, h.d.Now(), limit)
	writeJSON(w, http.StatusOK, WorkshopListResponse{
		Workshops:  list,
		Categories: snap.Categories,
		Total:      len(list),
	})
}

// GetWorkshop handles GET /api/workshops/{slug}.
//
//	@Summary		Get a single workshop
//	@Tags			workshops
//	@Produce		json
//	@Param			slug	path		string	true	"Workshop slug"
//	@Success		200		{object}	models.Workshop
//	@Failure		404		{object}	errResponse
//	@Router			/workshops/{slug} [get]
func (h *Handler) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	ws, err := gallery.FindWorkshop(h.d.Catalog.Snapshot().Workshops, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.d.Ready != nil {
		if err := h.d.Ready(r.Context()); err != nil {
			h.d.Logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"version":  h.d.Catalog.Snapshot().Version,
		"sessions": h.d.Sessions.Len(),
	})
}
