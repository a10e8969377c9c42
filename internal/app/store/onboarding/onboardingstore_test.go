package onboardingstore_test

import (
	"testing"

	onboardingstore "github.com/dalemusser/sidequest/internal/app/store/onboarding"
	"github.com/dalemusser/sidequest/internal/testutil"
)

func TestBank(t *testing.T) {
	qs, err := onboardingstore.Bank()
	if err != nil {
		t.Fatalf("Bank failed: %v", err)
	}
	if len(qs) == 0 {
		t.Fatal("expected a non-empty bank")
	}
	for i := 1; i < len(qs); i++ {
		if qs[i-1].Order > qs[i].Order {
			t.Errorf("bank not ordered at %d", i)
		}
	}
	for _, q := range qs {
		for key, a := range q.Answers {
			if a.Text == "" || len(a.Tags) == 0 {
				t.Errorf("question %s option %s is incomplete", q.ID, key)
			}
		}
	}
}

func TestStore_SeedIsIdempotent(t *testing.T) {
	b := testutil.SetupTestBackend(t)
	store := onboardingstore.New(b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	qs, err := onboardingstore.Bank()
	if err != nil {
		t.Fatalf("Bank failed: %v", err)
	}

	added, err := store.Seed(ctx, qs)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if added != len(qs) {
		t.Errorf("first seed added %d, want %d", added, len(qs))
	}

	added, err = store.Seed(ctx, qs)
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if added != 0 {
		t.Errorf("second seed added %d, want 0", added)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != len(qs) {
		t.Fatalf("List returned %d, want %d", len(got), len(qs))
	}
	if got[0].ID != qs[0].ID {
		t.Errorf("first question: got %q, want %q", got[0].ID, qs[0].ID)
	}
}
