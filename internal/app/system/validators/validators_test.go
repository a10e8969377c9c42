package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/sidequest/internal/app/system/validators"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "quests", "feedback", "onboardingQuestions", "scaffold_users", "counters"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestUsersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{"_id": "u1", "display_name": "No Email"})
	if err == nil {
		t.Error("expected validation error for user without email")
	}
}

func TestUsersValidator_ValidUser(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:              "u1",
		DisplayName:     "Valid User",
		Email:           "valid@example.com",
		Preferences:     models.DefaultPreferences(),
		CompletedQuests: []models.CompletedQuest{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
		t.Errorf("expected valid user to insert, got %v", err)
	}
}

func TestQuestsValidator(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	valid := models.Quest{
		ID:                 "q1",
		Title:              "Board games",
		Tags:               []string{},
		RequiredSkillLevel: 1,
		MinTeamSize:        2,
		MaxTeamSize:        4,
		DurationHours:      2,
		StartTime:          now.Add(time.Hour),
		Status:             models.QuestOpen,
		TeamMembers:        []models.TeamMember{},
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := db.Collection("quests").InsertOne(ctx, valid); err != nil {
		t.Fatalf("expected valid quest to insert, got %v", err)
	}

	bad := valid
	bad.ID = "q2"
	bad.Status = "paused"
	if _, err := db.Collection("quests").InsertOne(ctx, bad); err == nil {
		t.Error("expected validation error for unknown status")
	}
}

func TestFeedbackValidator_EnjoymentRange(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("feedback").InsertOne(ctx, models.Feedback{
		ID:         "f1",
		UserID:     "u1",
		Enjoyment:  9,
		Difficulty: models.DifficultyJustRight,
		SocialFit:  3,
	})
	if err == nil {
		t.Error("expected validation error for enjoyment out of range")
	}
}
