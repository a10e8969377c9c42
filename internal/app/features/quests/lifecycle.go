// internal/app/features/quests/lifecycle.go
package quests

import (
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
)

type joinInput struct {
	StartSolo bool `json:"start_solo"`
}

// HandleJoin handles POST /quests/{id}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var in joinInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	q, err := h.Lifecycle.Join(r.Context(), chi.URLParam(r, "id"), currentUserID(r), in.StartSolo)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, q)
}

// HandleComplete handles POST /quests/{id}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	q, err := h.Lifecycle.Complete(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, q)
}
