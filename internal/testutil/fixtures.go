package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestTimeout bounds each test's store calls.
const TestTimeout = 10 * time.Second

// TestContext returns a context that expires after TestTimeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), TestTimeout)
}

// SetupTestBackend returns a fresh in-memory document store that is closed
// when the test ends.
func SetupTestBackend(t *testing.T) *docstore.Memory {
	t.Helper()
	b := docstore.NewMemory(zap.NewNop())
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	b docstore.Backend
	t *testing.T
}

// NewFixtures creates a new Fixtures instance for the given backend.
func NewFixtures(t *testing.T, b docstore.Backend) *Fixtures {
	t.Helper()
	return &Fixtures{b: b, t: t}
}

// Backend returns the underlying store for direct access in tests.
func (f *Fixtures) Backend() docstore.Backend {
	return f.b
}

// CreateUser creates a user with explicit preferences.
func (f *Fixtures) CreateUser(ctx context.Context, name string, prefs models.UserPreferences) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:              uuid.NewString(),
		DisplayName:     name,
		Email:           uuid.NewString()[:8] + "@test.com",
		Preferences:     prefs,
		HasPreferences:  true,
		CompletedQuests: []models.CompletedQuest{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.b.Create(ctx, "users", u.ID, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateNewUser creates a user who has not saved preferences yet.
func (f *Fixtures) CreateNewUser(ctx context.Context, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:              uuid.NewString(),
		DisplayName:     name,
		Email:           uuid.NewString()[:8] + "@test.com",
		Preferences:     models.DefaultPreferences(),
		CompletedQuests: []models.CompletedQuest{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.b.Create(ctx, "users", u.ID, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// QuestOption customizes a fixture quest.
type QuestOption func(*models.Quest)

// WithTeamSize sets the min and max team size.
func WithTeamSize(minSize, maxSize int) QuestOption {
	return func(q *models.Quest) {
		q.MinTeamSize = minSize
		q.MaxTeamSize = maxSize
	}
}

// WithStart sets the quest start time.
func WithStart(start time.Time) QuestOption {
	return func(q *models.Quest) { q.StartTime = start }
}

// WithTags sets the quest tags.
func WithTags(tags ...string) QuestOption {
	return func(q *models.Quest) { q.Tags = tags }
}

// WithStatus sets the quest status.
func WithStatus(s models.QuestStatus) QuestOption {
	return func(q *models.Quest) { q.Status = s }
}

// WithSkill sets the required skill level.
func WithSkill(level int) QuestOption {
	return func(q *models.Quest) { q.RequiredSkillLevel = level }
}

// WithMembers puts users on the team. Their active quest is not set.
func WithMembers(users ...models.User) QuestOption {
	return func(q *models.Quest) {
		for _, u := range users {
			q.TeamMembers = append(q.TeamMembers, models.TeamMember{
				UserID:      u.ID,
				DisplayName: u.DisplayName,
				JoinedAt:    time.Now().UTC(),
				Status:      models.MemberJoined,
			})
		}
	}
}

// WithEnd sets the quest end time.
func WithEnd(end time.Time) QuestOption {
	return func(q *models.Quest) { q.EndTime = &end }
}

// CreateQuest creates an open quest starting in 24 hours with a 2..4 team.
func (f *Fixtures) CreateQuest(ctx context.Context, title string, opts ...QuestOption) models.Quest {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Quest{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        title + " description",
		Tags:               []string{},
		RequiredSkillLevel: 1,
		MinTeamSize:        2,
		MaxTeamSize:        4,
		Location:           "Student Union",
		DurationHours:      2,
		StartTime:          now.Add(24 * time.Hour),
		Status:             models.QuestOpen,
		TeamMembers:        []models.TeamMember{},
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(&q)
	}
	if err := f.b.Create(ctx, "quests", q.ID, q); err != nil {
		f.t.Fatalf("failed to create test quest: %v", err)
	}
	return q
}

// SetActiveQuest points a user at a quest, as a join would.
func (f *Fixtures) SetActiveQuest(ctx context.Context, u models.User, questID string) models.User {
	f.t.Helper()

	cur, err := docstore.Get[models.User](ctx, f.b, "users", u.ID)
	if err != nil {
		f.t.Fatalf("failed to load test user: %v", err)
	}
	now := time.Now().UTC()
	id := questID
	cur.ActiveQuestID = &id
	cur.ActiveQuestStartDate = &now
	cur.Version++
	if err := f.b.Replace(ctx, "users", cur.ID, cur, cur.Version-1); err != nil {
		f.t.Fatalf("failed to set active quest: %v", err)
	}
	return cur
}

// AddCompletedQuest appends a history entry to a user.
func (f *Fixtures) AddCompletedQuest(ctx context.Context, u models.User, entry models.CompletedQuest) models.User {
	f.t.Helper()

	cur, err := docstore.Get[models.User](ctx, f.b, "users", u.ID)
	if err != nil {
		f.t.Fatalf("failed to load test user: %v", err)
	}
	cur.CompletedQuests = append(cur.CompletedQuests, entry)
	cur.Version++
	if err := f.b.Replace(ctx, "users", cur.ID, cur, cur.Version-1); err != nil {
		f.t.Fatalf("failed to add completed quest: %v", err)
	}
	return cur
}

// GetUser reloads a user.
func (f *Fixtures) GetUser(ctx context.Context, id string) models.User {
	f.t.Helper()
	u, err := docstore.Get[models.User](ctx, f.b, "users", id)
	if err != nil {
		f.t.Fatalf("failed to load user %s: %v", id, err)
	}
	return u
}

// GetQuest reloads a quest.
func (f *Fixtures) GetQuest(ctx context.Context, id string) models.Quest {
	f.t.Helper()
	q, err := docstore.Get[models.Quest](ctx, f.b, "quests", id)
	if err != nil {
		f.t.Fatalf("failed to load quest %s: %v", id, err)
	}
	return q
}
