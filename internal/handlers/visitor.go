package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// VisitorCookie identifies a browser across visits. It carries no account
// and is only used to key onboarding flags and quote sessions.
const VisitorCookie = "brief_visitor"

// VisitorID returns the caller's visitor id, issuing a new cookie when the
// request has none or an invalid one.
func VisitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
