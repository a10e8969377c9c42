package metricsstore_test

import (
	"testing"

	metricsstore "github.com/dalemusser/sidequest/internal/app/store/metrics"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
)

func TestFetch(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	busy := fx.CreateNewUser(ctx, "Busy")
	fx.CreateNewUser(ctx, "Idle")
	q := fx.CreateQuest(ctx, "Trivia night", testutil.WithStatus(models.QuestForming))
	fx.CreateQuest(ctx, "Sunrise hike")
	fx.SetActiveQuest(ctx, busy, q.ID)

	got := metricsstore.Fetch(ctx, b)
	if got.Unavailable {
		t.Fatal("memory store should always be available")
	}
	if got.Users != 2 || got.OnQuest != 1 {
		t.Errorf("users = %d, on quest = %d", got.Users, got.OnQuest)
	}
	if got.Quests[models.QuestOpen] != 1 || got.Quests[models.QuestForming] != 1 {
		t.Errorf("quests by status = %v", got.Quests)
	}
	if got.Feedback != 0 {
		t.Errorf("feedback = %d", got.Feedback)
	}
}
