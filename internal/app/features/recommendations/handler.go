// internal/app/features/recommendations/handler.go
package recommendations

import (
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/paging"
	"go.uber.org/zap"
)

type Handler struct {
	Matching *matching.Engine
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
	// TopN is used when ?top= is absent.
	TopN int
}

func NewHandler(engine *matching.Engine, topN int, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if topN <= 0 {
		topN = matching.DefaultTopN
	}
	return &Handler{Matching: engine, TopN: topN, ErrLog: errLog, Log: logger}
}

// Serve handles GET /recommendations?top=N.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	top := paging.ParseLimit(r, "top", h.TopN)

	matches, err := h.Matching.RecommendQuests(r.Context(), su.ID, top)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, matches)
}
