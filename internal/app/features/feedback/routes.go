// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMine)
	r.Post("/", h.HandleSubmit)
	return r
}
