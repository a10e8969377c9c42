package feedback_test

import (
	"net/http"
	"testing"
	"time"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/features/feedback"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*feedback.Handler, *testutil.Fixtures) {
	t.Helper()
	b := testutil.SetupTestBackend(t)
	logger := zap.NewNop()
	return feedback.NewHandler(b, apierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, b)
}

func TestHandleSubmit_AdjustsTraits(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.DefaultPreferences()
	prefs.PersonalityTraits = map[string]int{"outdoorsy": 1}
	u := fx.CreateUser(ctx, "Hiker", prefs)
	q := fx.CreateQuest(ctx, "Ridge walk", testutil.WithTags("outdoorsy", "active"))

	rec := testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/feedback", map[string]any{
		"quest_id":     q.ID,
		"enjoyment":    5,
		"difficulty":   "just_right",
		"social_fit":   4,
		"would_repeat": true,
		"comments":     "<b>great</b> views",
	}, u))
	rec.AssertStatus(t, http.StatusCreated)

	var f models.Feedback
	rec.Decode(t, &f)
	if f.ID == "" || f.UserID != u.ID {
		t.Errorf("unexpected feedback %+v", f)
	}
	if f.Comments != "great views" {
		t.Errorf("comments not sanitized: %q", f.Comments)
	}

	traits := fx.GetUser(ctx, u.ID).Preferences.PersonalityTraits
	if traits["outdoorsy"] != 2 || traits["active"] != 1 {
		t.Errorf("unexpected traits %v", traits)
	}
}

func TestHandleSubmit_MissingQuestKeepsTraits(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Wanderer")

	rec := testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/feedback", map[string]any{
		"quest_id":   "gone",
		"enjoyment":  1,
		"difficulty": "too_hard",
		"social_fit": 1,
	}, u))
	rec.AssertStatus(t, http.StatusCreated)

	if got := fx.GetUser(ctx, u.ID); got.Version != u.Version {
		t.Errorf("user should be untouched, version %d -> %d", u.Version, got.Version)
	}
}

func TestHandleSubmit_SweptQuestUsesHistory(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Baker", models.DefaultPreferences())
	u = fx.AddCompletedQuest(ctx, u, models.CompletedQuest{
		QuestID:     "swept-quest",
		CompletedAt: time.Now().UTC().Add(-72 * time.Hour),
		Title:       "Bake sale",
		TeamSize:    3,
		Tags:        []string{"cozy", "sweet-tooth"},
	})

	rec := testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/feedback", map[string]any{
		"quest_id":   "swept-quest",
		"enjoyment":  4,
		"difficulty": "just_right",
		"social_fit": 4,
	}, u))
	rec.AssertStatus(t, http.StatusCreated)

	traits := fx.GetUser(ctx, u.ID).Preferences.PersonalityTraits
	if traits["cozy"] != 1 || traits["sweet-tooth"] != 1 {
		t.Errorf("unexpected traits %v", traits)
	}
}

func TestHandleSubmit_Invalid(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateNewUser(ctx, "Critic")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"enjoyment out of range", map[string]any{"enjoyment": 6, "difficulty": "just_right", "social_fit": 3}},
		{"missing enjoyment", map[string]any{"difficulty": "just_right", "social_fit": 3}},
		{"unknown difficulty", map[string]any{"enjoyment": 3, "difficulty": "meh", "social_fit": 3}},
		{"social fit zero", map[string]any{"enjoyment": 3, "difficulty": "too_easy", "social_fit": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleSubmit(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/feedback", tt.body, u))
			rec.AssertStatus(t, http.StatusBadRequest)
			if code := rec.ErrorCode(t); code != apierrors.CodeInvalid {
				t.Errorf("error code = %q", code)
			}
		})
	}
}

func TestServeMine(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateNewUser(ctx, "A")
	b := fx.CreateNewUser(ctx, "B")

	body := map[string]any{"enjoyment": 3, "difficulty": "just_right", "social_fit": 3}
	for _, u := range []models.User{a, a, b} {
		rec := testutil.NewRecorder()
		h.HandleSubmit(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/feedback", body, u))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec := testutil.NewRecorder()
	h.ServeMine(rec, testutil.NewAuthenticatedRequest(t, "GET", "/api/feedback", nil, a))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Feedback
	rec.Decode(t, &list)
	if len(list) != 2 {
		t.Errorf("expected 2 entries for A, got %d", len(list))
	}
}
