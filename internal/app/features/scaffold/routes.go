// internal/app/features/scaffold/routes.go
package scaffold

import "github.com/go-chi/chi/v5"

// Routes is mounted under /api/users and needs no session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeOne)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
