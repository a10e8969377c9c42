// internal/app/features/profile/handler.go
package profile

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/dalemusser/sidequest/internal/app/system/normalize"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

type preferencesInput struct {
	Interests             []string `json:"interests" validate:"max=20,dive,max=40" label:"Interests"`
	SkillLevel            int      `json:"skill_level" validate:"gte=1,lte=5" label:"Skill level"`
	PreferredTeamSize     int      `json:"preferred_team_size" validate:"gte=1,lte=10" label:"Preferred team size"`
	AvailableHoursPerWeek float64  `json:"available_hours_per_week" validate:"gte=0,lte=168" label:"Available hours per week"`
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	u, err := h.Users.Get(r.Context(), su.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		err = questerr.ErrUserNotFound
	}
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, u)
}

// HandlePreferences handles PUT /me/preferences. Personality traits are
// kept; everything else is replaced.
func (h *Handler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	var in preferencesInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	su, _ := auth.CurrentUser(r)
	u, err := h.Users.Get(r.Context(), su.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		err = questerr.ErrUserNotFound
	}
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	u.Preferences.Interests = normalize.Tags(in.Interests)
	u.Preferences.SkillLevel = in.SkillLevel
	u.Preferences.PreferredTeamSize = in.PreferredTeamSize
	u.Preferences.AvailableHoursPerWeek = in.AvailableHoursPerWeek
	u.HasPreferences = true

	if err := h.Users.Save(r.Context(), &u); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("preferences updated", zap.String("user_id", u.ID))
	apierrors.JSON(w, http.StatusOK, u)
}
