// internal/app/features/feedback/handler.go
package feedback

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	feedbackstore "github.com/dalemusser/sidequest/internal/app/store/feedback"
	queststore "github.com/dalemusser/sidequest/internal/app/store/quests"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/domain/onboarding"
	"go.uber.org/zap"
)

// MaxCommentsLen bounds the free-text part of a survey.
const MaxCommentsLen = 2000

type Handler struct {
	Feedback *feedbackstore.Store
	Quests   *queststore.Store
	Users    *userstore.Store
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(b docstore.Backend, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Feedback: feedbackstore.New(b),
		Quests:   queststore.New(b),
		Users:    userstore.New(b),
		ErrLog:   errLog,
		Log:      logger,
	}
}

type feedbackInput struct {
	QuestID     string `json:"quest_id" validate:"max=64" label:"Quest"`
	Enjoyment   int    `json:"enjoyment" validate:"required,min=1,max=5" label:"Enjoyment"`
	Difficulty  string `json:"difficulty" validate:"required,oneof=too_easy just_right too_hard" label:"Difficulty"`
	SocialFit   int    `json:"social_fit" validate:"required,min=1,max=5" label:"Social fit"`
	WouldRepeat bool   `json:"would_repeat"`
	Comments    string `json:"comments" validate:"max=2000" label:"Comments"`
}

// ServeMine handles GET /api/feedback: the caller's feedback, newest first.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	list, err := h.Feedback.ListByUser(r.Context(), su.ID)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	apierrors.JSON(w, http.StatusOK, list)
}

// HandleSubmit handles POST /api/feedback. When the survey names a quest the
// caller knows (live, or in their history), their traits move toward or away
// from its tags.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in feedbackInput
	if err := inputval.Decode(w, r, &in, limits.MaxFeedbackBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	su, _ := auth.CurrentUser(r)

	f, err := h.Feedback.Create(r.Context(), models.Feedback{
		UserID:      su.ID,
		QuestID:     in.QuestID,
		Enjoyment:   in.Enjoyment,
		Difficulty:  in.Difficulty,
		SocialFit:   in.SocialFit,
		WouldRepeat: in.WouldRepeat,
		Comments:    htmlsanitize.StripTags(in.Comments),
	})
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	if in.QuestID != "" {
		if err := h.adjustTraits(r, su.ID, in.QuestID, in.Enjoyment); err != nil {
			// The survey is already stored; trait drift is best effort.
			h.Log.Warn("feedback trait update failed",
				zap.String("user_id", su.ID),
				zap.String("quest_id", in.QuestID),
				zap.Error(err))
		}
	}
	apierrors.JSON(w, http.StatusCreated, f)
}

func (h *Handler) adjustTraits(r *http.Request, userID, questID string, enjoyment int) error {
	ctx := r.Context()
	u, err := h.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	tags, err := h.questTags(r, u, questID)
	if err != nil || tags == nil {
		return err
	}
	u.Preferences.PersonalityTraits = onboarding.ApplyFeedback(u.Preferences.PersonalityTraits, tags, enjoyment)
	return h.Users.Save(ctx, &u)
}

// questTags reads the quest's tags, falling back to the user's history once
// the quest document has been swept. Nil means the quest is unknown.
func (h *Handler) questTags(r *http.Request, u models.User, questID string) ([]string, error) {
	q, err := h.Quests.Get(r.Context(), questID)
	if err == nil {
		return q.Tags, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}
	for i := len(u.CompletedQuests) - 1; i >= 0; i-- {
		if c := u.CompletedQuests[i]; c.QuestID == questID {
			return c.Tags, nil
		}
	}
	return nil, nil
}
