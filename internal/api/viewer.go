package api

import (
	"net/http"

	"github.com/starford/designa/internal/gallery"
	"github.com/starford/designa/internal/session"
	"github.com/starford/designa/internal/viewer"
)

const (
	targetArtwork = "artwork"
	targetImage   = "image"
)

func viewerResponse(s *session.Session, v viewer.View) ViewerResponse {
	f := s.Filter()
	return ViewerResponse{
		View: v,
		Filter: ViewerFilterRequest{
			Software: f.Software,
			Type:     f.Type,
			Tag:      f.Tag,
			Size:     string(f.Size),
		},
	}
}

// GetViewer handles GET /api/viewer.
//
//	@Summary		Current artwork viewer state
//	@Tags			viewer
//	@Produce		json
//	@Success		200	{object}	ViewerResponse
//	@Router			/viewer [get]
func (h *Handler) GetViewer(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, viewerResponse(s, s.Viewer.View()))
}

// OpenList handles POST /api/viewer/list/open.
func (h *Handler) OpenList(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, viewerResponse(s, s.Viewer.OpenList()))
}

// CloseList handles POST /api/viewer/list/close.
func (h *Handler) CloseList(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, viewerResponse(s, s.Viewer.CloseList()))
}

// SetViewerFilter handles PUT /api/viewer/filter.
//
//	@Summary		Set the artworks displayed by the viewer
//	@Tags			viewer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ViewerFilterRequest	true	"Gallery filter"
//	@Success		200		{object}	ViewerResponse
//	@Failure		400		{object}	errResponse
//	@Router			/viewer/filter [put]
func (h *Handler) SetViewerFilter(w http.ResponseWriter, r *http.Request) {
	var req ViewerFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	size, err := gallery.ParseThumbnailSize(req.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s := h.visitor(w, r)
	s.SetFilter(gallery.ArtworkFilter{
		Software: req.Software,
		Type:     req.Type,
		Tag:      req.Tag,
		Size:     size,
	}, h.d.Catalog.Snapshot())
	writeJSON(w, http.StatusOK, viewerResponse(s, s.Viewer.View()))
}

// SelectArtwork handles POST /api/viewer/select.
//
//	@Summary		Open an artwork in the viewer
//	@Tags			viewer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectRequest	true	"Artwork to open"
//	@Success		200		{object}	ViewerResponse
//	@Failure		404		{object}	errResponse
//	@Router			/viewer/select [post]
func (h *Handler) SelectArtwork(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := h.visitor(w, r)
	v, err := s.Viewer.Select(req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewerResponse(s, v))
}

// Navigate handles POST /api/viewer/navigate.
//
//	@Summary		Move to the next or previous artwork or image
//	@Tags			viewer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NavigateRequest	true	"Navigation step"
//	@Success		200		{object}	ViewerResponse
//	@Failure		400		{object}	errResponse
//	@Router			/viewer/navigate [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dir, err := viewer.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s := h.visitor(w, r)
	var v viewer.View
	switch req.Target {
	case targetArtwork, "":
		v, err = s.Viewer.NavigateArtwork(dir)
	case targetImage:
		v, err = s.Viewer.NavigateImage(dir)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("target must be artwork or image"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewerResponse(s, v))
}

// CloseViewer handles POST /api/viewer/close.
func (h *Handler) CloseViewer(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, viewerResponse(s, s.Viewer.Close()))
}
