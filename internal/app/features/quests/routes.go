// internal/app/features/quests/routes.go
package quests

import (
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /quests. Every endpoint needs a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeQuest)
		r.Post("/join", h.HandleJoin)
		r.Post("/complete", h.HandleComplete)
		r.Get("/teammates", h.ServeTeammates)
		r.Post("/team", h.HandleProposeTeam)
		r.Get("/watch", h.ServeWatch)
	})
	return r
}
