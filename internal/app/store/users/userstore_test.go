package userstore_test

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		DisplayName: "  Sam   Rivera ",
		Email:       "Sam@Example.COM",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Verify ID was assigned
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}

	// Verify normalized fields
	if created.DisplayName != "Sam Rivera" {
		t.Errorf("DisplayName: got %q", created.DisplayName)
	}
	if created.Email != "sam@example.com" {
		t.Errorf("Email: got %q", created.Email)
	}

	// Verify default preferences
	p := created.Preferences
	if p.SkillLevel != 1 || p.PreferredTeamSize != 2 || p.AvailableHoursPerWeek != 5 {
		t.Errorf("expected default preferences, got %+v", p)
	}
	if created.HasPreferences {
		t.Error("new user should not have saved preferences")
	}

	// Verify timestamps
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{DisplayName: "A", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{DisplayName: "B", Email: "DUP@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Create_ConcurrentDuplicateEmail(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sq, err := docstore.OpenSQLite(ctx, filepath.Join(t.TempDir(), "users.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close(ctx) })

	backends := map[string]docstore.Backend{
		"memory": testutil.SetupTestBackend(t),
		"sqlite": sq,
	}
	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			store := userstore.New(b)

			var (
				wg      sync.WaitGroup
				created atomic.Int32
				dups    atomic.Int32
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.Create(ctx, models.User{DisplayName: "Racer", Email: "race@example.com"})
					switch {
					case err == nil:
						created.Add(1)
					case errors.Is(err, userstore.ErrDuplicateEmail):
						dups.Add(1)
					default:
						t.Errorf("Create: %v", err)
					}
				}()
			}
			wg.Wait()

			if created.Load() != 1 || dups.Load() != 7 {
				t.Errorf("created=%d duplicates=%d, want 1 and 7", created.Load(), dups.Load())
			}
			users, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(users) != 1 {
				t.Errorf("expected 1 stored user, got %d", len(users))
			}
		})
	}
}

func TestStore_Create_Validation(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		user models.User
	}{
		{"missing email", models.User{DisplayName: "No Email"}},
		{"missing name", models.User{Email: "x@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.user); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStore_GetByEmail(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{DisplayName: "Kai", Email: "kai@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "  KAI@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail: got %q, want %q", got.ID, created.ID)
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindByActiveQuest(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	fixtures := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", models.DefaultPreferences())
	c := fixtures.CreateUser(ctx, "C", models.DefaultPreferences())
	fixtures.CreateUser(ctx, "Idle", models.DefaultPreferences())
	fixtures.SetActiveQuest(ctx, a, "q1")
	fixtures.SetActiveQuest(ctx, c, "q1")

	got, err := store.FindByActiveQuest(ctx, "q1")
	if err != nil {
		t.Fatalf("FindByActiveQuest failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
}

func TestStore_Save(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := userstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{DisplayName: "Lee", Email: "lee@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	stale := u

	u.Onboarded = true
	if err := store.Save(ctx, &u); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, &stale); !errors.Is(err, docstore.ErrConflict) {
		t.Errorf("expected ErrConflict on stale save, got %v", err)
	}

	got, err := store.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Onboarded || got.Version != 2 {
		t.Errorf("unexpected stored user: onboarded=%v version=%d", got.Onboarded, got.Version)
	}
}
