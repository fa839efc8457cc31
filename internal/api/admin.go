package api

import (
	"net/http"

	"github.com/starford/designa/internal/catalog"
)

const (
	defaultSubmissionLimit = 50
	maxSubmissionLimit     = 200
)

// Reload handles POST /api/admin/reload.
//
//	@Summary		Re-read the artwork and workshop fixtures
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	changed, err := h.d.Catalog.Reload()
	snap := h.d.Catalog.Snapshot()
	if err != nil {
		h.publish(catalog.EventRejected, snap.Version)
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	if changed {
		h.publish(catalog.EventReloaded, snap.Version)
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Changed:   changed,
		Version:   snap.Version,
		Artworks:  len(snap.Artworks),
		Workshops: len(snap.Workshops),
	})
}

func (h *Handler) publish(kind, version string) {
	if h.d.Events != nil {
		h.d.Events.PublishCatalogEvent(kind, version)
	}
}

// ListSubmissions handles GET /api/admin/submissions.
//
//	@Summary		Contact submission log, newest first
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"success or error"
//	@Param			q		query		string	false	"Full-text search"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	SubmissionListResponse
//	@Security		BearerAuth
//	@Router			/admin/submissions [get]
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if h.d.Submissions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("submission log unavailable"))
		return
	}
	limit, err := queryInt(r, "limit", defaultSubmissionLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if limit == 0 || limit > maxSubmissionLimit {
		limit = maxSubmissionLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	q := r.URL.Query()
	if query := q.Get("q"); query != "" {
		items, err := h.d.Submissions.SearchSubmissions(r.Context(), query, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, SubmissionListResponse{Submissions: items, Total: len(items)})
		return
	}

	items, total, err := h.d.Submissions.ListSubmissions(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmissionListResponse{Submissions: items, Total: total})
}
