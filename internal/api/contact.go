package api

import "net/http"

// GetContact handles GET /api/contact. A visitor who sent a message within
// the success window sees the confirmation again.
//
//	@Summary		Contact form state
//	@Tags			contact
//	@Produce		json
//	@Success		200	{object}	ContactResponse
//	@Router			/contact [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, s.Contact.Restore(r.Context()))
}

// SubmitContact handles POST /api/contact.
//
// The body is always the resulting form state so the client can render
// field errors and messages; the status code classifies the outcome.
//
//	@Summary		Send the contact form
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContactRequest	true	"Contact form"
//	@Success		200		{object}	ContactResponse
//	@Failure		409		{object}	ContactResponse
//	@Failure		422		{object}	ContactResponse
//	@Failure		502		{object}	ContactResponse
//	@Failure		503		{object}	ContactResponse
//	@Router			/contact [post]
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := h.visitor(w, r)
	st, err := s.Contact.Submit(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ResetContact handles POST /api/contact/reset.
func (h *Handler) ResetContact(w http.ResponseWriter, r *http.Request) {
	s := h.visitor(w, r)
	writeJSON(w, http.StatusOK, s.Contact.Reset())
}
