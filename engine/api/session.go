package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/WessleyAI/car-explorer/engine/prefs"
)

// SessionCookie identifies the preference namespace of a client.
const SessionCookie = "carexplorer_session"

// session returns the client's session ID, issuing a new one on w when the
// request carries none or a malformed one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, p *prefs.Store)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, prefs.New(s.kv, s.session(w, r), s.opts...))
	}
}
