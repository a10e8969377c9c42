// internal/app/features/quests/handler.go
package quests

import (
	"net/http"
	"time"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/catalog"
	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the quest catalog, lifecycle and team endpoints.
type Handler struct {
	Catalog   *catalog.Service
	Lifecycle *lifecycle.Service
	Matching  *matching.Engine
	Hub       *docstore.Hub
	ErrLog    *apierrors.ErrorLogger
	Log       *zap.Logger

	// TeammateLimit is used when ?limit= is absent.
	TeammateLimit int
	// Origins allowed to open a watch socket. Empty means same origin only.
	Origins []string

	now func() time.Time
}

func NewHandler(cat *catalog.Service, lc *lifecycle.Service, engine *matching.Engine, hub *docstore.Hub, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog:       cat,
		Lifecycle:     lc,
		Matching:      engine,
		Hub:           hub,
		ErrLog:        errLog,
		Log:           logger,
		TeammateLimit: matching.DefaultTeammateLimit,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func currentUserID(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		return u.ID
	}
	return ""
}

// ServeList handles GET /quests: joinable quests, soonest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	quests, err := h.Catalog.ListJoinable(r.Context(), h.now())
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, quests)
}

// ServeQuest handles GET /quests/{id}.
func (h *Handler) ServeQuest(w http.ResponseWriter, r *http.Request) {
	q, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, q)
}

// HandleCreate handles POST /quests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := inputval.Decode(w, r, &in, limits.MaxQuestBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	q, err := h.Catalog.Create(r.Context(), in, h.now())
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("quest created",
		zap.String("quest_id", q.ID),
		zap.String("created_by", currentUserID(r)))
	apierrors.JSON(w, http.StatusCreated, q)
}
