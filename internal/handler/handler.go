package handler

import (
	"net/http"
	"slices"

	"github.com/afrigis/user-feedback/internal/repository"
)

// Handler carries the cross-cutting pieces shared by every route: the
// optional database used for health checks and the CORS allow-list.
type Handler struct {
	db             repository.DB
	allowedOrigins []string
}

// New creates a Handler. db may be nil when no database is configured.
func New(db repository.DB, allowedOrigins []string) *Handler {
	return &Handler{db: db, allowedOrigins: allowedOrigins}
}

// CORS echoes the request Origin back when it is on the allow-list. A "*"
// entry opens the API to any origin, but never with credentials.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
		case slices.Contains(h.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		case slices.Contains(h.allowedOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
