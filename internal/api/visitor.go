package api

import (
	"net/http"

	"github.com/starford/designa/internal/session"
)

// VisitorCookie carries the visitor's session id.
const VisitorCookie = "designa_visitor"

const visitorCookieMaxAge = 30 * 24 * 60 * 60

// visitor returns the caller's session, issuing a new cookie when the
// request carried none or an unusable one. The session's displayed list is
// brought up to date with the current catalog.
func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(VisitorCookie); err == nil {
		id = c.Value
	}
	s, _ := h.d.Sessions.Get(id)
	if s.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     VisitorCookie,
			Value:    s.ID,
			Path:     "/",
			MaxAge:   visitorCookieMaxAge,
			HttpOnly: true,
			Secure:   h.d.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.Sync(h.d.Catalog.Snapshot())
	return s
}
