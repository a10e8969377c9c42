// internal/app/features/onboarding/handler.go
package onboarding

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	onboardingstore "github.com/dalemusser/sidequest/internal/app/store/onboarding"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	quiz "github.com/dalemusser/sidequest/internal/domain/onboarding"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"go.uber.org/zap"
)

type Handler struct {
	Questions *onboardingstore.Store
	Users     *userstore.Store
	ErrLog    *apierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(questions *onboardingstore.Store, users *userstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Questions: questions, Users: users, ErrLog: errLog, Log: logger}
}

type answersInput struct {
	Answers []string `json:"answers" validate:"required,min=1,max=50" label:"Answers"`
}

// ServeQuestions handles GET /onboarding/questions.
func (h *Handler) ServeQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.Questions.List(r.Context())
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, qs)
}

// HandleAnswers handles POST /onboarding/answers. The tally replaces the
// user's personality traits and marks them onboarded.
func (h *Handler) HandleAnswers(w http.ResponseWriter, r *http.Request) {
	var in answersInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	qs, err := h.Questions.List(r.Context())
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	traits, err := quiz.Tally(qs, in.Answers)
	if errors.Is(err, quiz.ErrUnknownOption) {
		h.ErrLog.Render(w, r, questerr.Invalid(err.Error()))
		return
	}
	if err != nil {
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

	u.Preferences.PersonalityTraits = traits
	u.Onboarded = true
	if err := h.Users.Save(r.Context(), &u); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("onboarding completed", zap.String("user_id", u.ID), zap.Int("traits", len(traits)))
	apierrors.JSON(w, http.StatusOK, u)
}
