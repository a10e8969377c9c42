// internal/app/features/scaffold/handler.go

// Package scaffold serves a schemaless users CRUD surface under /api/users.
// Records carry sequential integer ids and arbitrary JSON fields.
package scaffold

import (
	"net/http"
	"strconv"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	scaffoldstore "github.com/dalemusser/sidequest/internal/app/store/scaffoldusers"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Store  *scaffoldstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *scaffoldstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, ErrLog: errLog, Log: logger}
}

// flatten renders a record as its fields plus "id".
func flatten(u models.ScaffoldUser) map[string]any {
	out := make(map[string]any, len(u.Fields)+1)
	for k, v := range u.Fields {
		out[k] = v
	}
	out["id"] = u.Seq
	return out
}

func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var fields map[string]any
	if err := inputval.Decode(w, r, &fields, limits.MaxJSONBody); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	delete(fields, "id")
	return fields, nil
}

// seqParam parses {id}. Anything that is not a positive integer cannot name
// a record, so it reports not found.
func seqParam(r *http.Request) (int64, error) {
	seq, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || seq < 1 {
		return 0, docstore.ErrNotFound
	}
	return seq, nil
}

// ServeList handles GET /api/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.List(r.Context())
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(recs))
	for _, u := range recs {
		out = append(out, flatten(u))
	}
	apierrors.JSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /api/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := h.decodeFields(w, r)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	u, err := h.Store.Create(r.Context(), fields)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Debug("scaffold user created", zap.Int64("id", u.Seq))
	apierrors.JSON(w, http.StatusCreated, flatten(u))
}

// ServeOne handles GET /api/users/{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	u, err := h.Store.Get(r.Context(), seq)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, flatten(u))
}

// HandleUpdate handles PUT /api/users/{id}. The body replaces every field.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	fields, err := h.decodeFields(w, r)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	u, err := h.Store.Update(r.Context(), seq, fields)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, flatten(u))
}

// HandleDelete handles DELETE /api/users/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	deleted, err := h.Store.Delete(r.Context(), seq)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, flatten(deleted))
}
