package quests_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/sidequest/internal/app/catalog"
	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/features/quests"
	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*quests.Handler, *testutil.Fixtures, *docstore.Memory) {
	t.Helper()
	b := testutil.SetupTestBackend(t)
	logger := zap.NewNop()
	cat := catalog.New(b, logger, 0)
	h := quests.NewHandler(
		cat,
		lifecycle.New(b, logger, nil, lifecycle.Options{}),
		matching.New(cat, b, logger, nil),
		b.Hub(),
		apierrors.NewErrorLogger(logger),
		logger,
	)
	return h, testutil.NewFixtures(t, b), b
}

func TestServeList(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Viewer")
	fx.CreateQuest(ctx, "Later", testutil.WithStart(time.Now().Add(48*time.Hour)))
	fx.CreateQuest(ctx, "Sooner", testutil.WithStart(time.Now().Add(2*time.Hour)))
	fx.CreateQuest(ctx, "Over", testutil.WithStatus(models.QuestExpired))

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/quests", nil, u))
	rec.AssertStatus(t, http.StatusOK)

	var got []models.Quest
	rec.Decode(t, &got)
	if len(got) != 2 || got[0].Title != "Sooner" || got[1].Title != "Later" {
		t.Errorf("unexpected list %+v", got)
	}
}

func TestHandleCreate(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Organizer")
	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/quests", map[string]any{
		"title":                "Pickup <b>Soccer</b>",
		"description":          "<p>Bring water</p><script>alert(1)</script>",
		"tags":                 []string{"Sports", "outdoors"},
		"required_skill_level": 2,
		"min_team_size":        4,
		"max_team_size":        10,
		"location":             "North Field",
		"duration_hours":       1.5,
		"start_time":           start,
	}, u))
	rec.AssertStatus(t, http.StatusCreated)

	var q models.Quest
	rec.Decode(t, &q)
	if q.ID == "" || q.Title != "Pickup Soccer" || q.Status != models.QuestOpen {
		t.Errorf("unexpected quest %+v", q)
	}
	if q.Description != "<p>Bring water</p>" {
		t.Errorf("description not sanitized: %q", q.Description)
	}

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/quests", map[string]any{
		"title":         "Backwards",
		"min_team_size": 5,
		"max_team_size": 2,
		"start_time":    start,
	}, u))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeQuest_NotFound(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateNewUser(ctx, "Viewer")
	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(t, "GET", "/quests/missing", nil, u), "id", "missing")
	rec := testutil.NewRecorder()
	h.ServeQuest(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestJoinAndComplete(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateUser(ctx, "A", models.DefaultPreferences())
	b := fx.CreateUser(ctx, "B", models.DefaultPreferences())
	q := fx.CreateQuest(ctx, "Karaoke", testutil.WithTeamSize(1, 1))

	join := func(u models.User) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(t, "POST", "/quests/"+q.ID+"/join", map[string]bool{"start_solo": false}, u)
		rec := testutil.NewRecorder()
		h.HandleJoin(rec, testutil.WithChiURLParam(req, "id", q.ID))
		return rec
	}

	rec := join(a)
	rec.AssertStatus(t, http.StatusOK)
	var joined models.Quest
	rec.Decode(t, &joined)
	if joined.Status != models.QuestActive {
		t.Errorf("status = %s, want active", joined.Status)
	}

	rec = join(b)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, lifecycle.ErrTeamFull.Error())

	req := testutil.NewAuthenticatedRequest(t, "POST", "/quests/"+q.ID+"/complete", nil, a)
	rec = testutil.NewRecorder()
	h.HandleComplete(rec, testutil.WithChiURLParam(req, "id", q.ID))
	rec.AssertStatus(t, http.StatusOK)

	if u := fx.GetUser(ctx, a.ID); u.HasActiveQuest() || len(u.CompletedQuests) != 1 {
		t.Errorf("unexpected user after completion: %+v", u)
	}
}

func TestTeammatesAndTeam(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	prefs := models.UserPreferences{
		Interests:             []string{"music"},
		SkillLevel:            2,
		PreferredTeamSize:     4,
		AvailableHoursPerWeek: 5,
		PersonalityTraits:     map[string]int{"performer": 1},
	}
	me := fx.CreateUser(ctx, "Me", prefs)
	pals := []models.User{
		fx.CreateUser(ctx, "Pal 1", prefs),
		fx.CreateUser(ctx, "Pal 2", prefs),
		fx.CreateUser(ctx, "Pal 3", prefs),
	}
	q := fx.CreateQuest(ctx, "Open Mic", testutil.WithTags("music"), testutil.WithSkill(2))

	req := testutil.NewAuthenticatedRequest(t, "GET", "/quests/"+q.ID+"/teammates?limit=5", nil, me)
	rec := testutil.NewRecorder()
	h.ServeTeammates(rec, testutil.WithChiURLParam(req, "id", q.ID))
	rec.AssertStatus(t, http.StatusOK)
	var mates []matching.TeammateMatch
	rec.Decode(t, &mates)
	if len(mates) != 3 {
		t.Errorf("expected 3 teammates, got %d", len(mates))
	}

	req = testutil.NewAuthenticatedRequest(t, "GET", "/quests/"+q.ID+"/teammates", nil, me)
	rec = testutil.NewRecorder()
	h.ServeTeammates(rec, testutil.WithChiURLParam(req, "id", q.ID))
	rec.Decode(t, &mates)
	if len(mates) != matching.DefaultTeammateLimit {
		t.Errorf("expected default limit, got %d", len(mates))
	}

	req = testutil.NewAuthenticatedRequest(t, "POST", "/quests/"+q.ID+"/team", map[string]any{
		"teammate_ids": []string{pals[0].ID, pals[1].ID},
	}, me)
	rec = testutil.NewRecorder()
	h.HandleProposeTeam(rec, testutil.WithChiURLParam(req, "id", q.ID))
	rec.AssertStatus(t, http.StatusOK)
	var p matching.TeamProposal
	rec.Decode(t, &p)
	if len(p.Members) != 3 || p.Status != models.QuestForming || p.MatchScore != 100 {
		t.Errorf("unexpected proposal %+v", p)
	}
}
