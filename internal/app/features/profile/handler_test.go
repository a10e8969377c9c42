package profile_test

import (
	"net/http"
	"testing"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/features/profile"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

func TestServeMe(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	fx := testutil.NewFixtures(t, b)
	h := profile.NewHandler(userstore.New(b), apierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Sky")

	rec := testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedRequest(t, "GET", "/me", nil, u))
	rec.AssertStatus(t, http.StatusOK)

	var got models.User
	rec.Decode(t, &got)
	if got.ID != u.ID || got.DisplayName != "Sky" {
		t.Errorf("unexpected user %+v", got)
	}

	gone := models.User{ID: "deleted", DisplayName: "Ghost"}
	rec = testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedRequest(t, "GET", "/me", nil, gone))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandlePreferences(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	fx := testutil.NewFixtures(t, b)
	h := profile.NewHandler(userstore.New(b), apierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.DefaultPreferences()
	prefs.PersonalityTraits = map[string]int{"explorer": 2}
	u := fx.CreateUser(ctx, "Sky", prefs)

	rec := testutil.NewRecorder()
	h.HandlePreferences(rec, testutil.NewAuthenticatedRequest(t, "PUT", "/me/preferences", map[string]any{
		"interests":                []string{"Board Games", "board games", "Hiking"},
		"skill_level":              3,
		"preferred_team_size":      4,
		"available_hours_per_week": 6,
	}, u))
	rec.AssertStatus(t, http.StatusOK)

	got := fx.GetUser(ctx, u.ID)
	if !got.HasPreferences || got.Preferences.SkillLevel != 3 || got.Preferences.PreferredTeamSize != 4 {
		t.Errorf("unexpected preferences %+v", got.Preferences)
	}
	if len(got.Preferences.Interests) != 2 || got.Preferences.Interests[0] != "board-games" {
		t.Errorf("interests = %v", got.Preferences.Interests)
	}
	if got.Preferences.PersonalityTraits["explorer"] != 2 {
		t.Errorf("traits should be kept, got %v", got.Preferences.PersonalityTraits)
	}

	rec = testutil.NewRecorder()
	h.HandlePreferences(rec, testutil.NewAuthenticatedRequest(t, "PUT", "/me/preferences", map[string]any{
		"skill_level":         9,
		"preferred_team_size": 2,
	}, u))
	rec.AssertStatus(t, http.StatusBadRequest)
}
