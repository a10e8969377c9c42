// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /me.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMe)
	r.Put("/preferences", h.HandlePreferences)
	return r
}
