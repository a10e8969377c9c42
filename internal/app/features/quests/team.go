// internal/app/features/quests/team.go
package quests

import (
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/dalemusser/sidequest/internal/app/system/paging"
	"github.com/go-chi/chi/v5"
)

type teamInput struct {
	TeammateIDs []string `json:"teammate_ids" validate:"max=20" label:"Teammates"`
}

// ServeTeammates handles GET /quests/{id}/teammates?limit=N.
func (h *Handler) ServeTeammates(w http.ResponseWriter, r *http.Request) {
	limit := paging.ParseLimit(r, "limit", h.TeammateLimit)
	matches, err := h.Matching.RecommendTeammates(r.Context(), currentUserID(r), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, matches)
}

// HandleProposeTeam handles POST /quests/{id}/team. The proposal is scored
// but not saved.
func (h *Handler) HandleProposeTeam(w http.ResponseWriter, r *http.Request) {
	var in teamInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	p, err := h.Matching.ProposeTeam(r.Context(), currentUserID(r), chi.URLParam(r, "id"), in.TeammateIDs)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, p)
}
