// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger is satisfied by every docstore backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store   Pinger
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler for the named backend.
func NewHandler(store Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Store   string `json:"store"`
	Message string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"mongo", "store":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "backend":"mongo", "store":"disconnected", "message":"Store unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
		apierrors.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "error",
			Backend: h.Backend,
			Store:   "disconnected",
			Message: "Store unavailable",
		})
		return
	}

	apierrors.JSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Backend: h.Backend,
		Store:   "connected",
	})
}
