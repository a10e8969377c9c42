// internal/app/store/onboarding/onboardingstore.go
package onboardingstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// Collection holds the onboarding question bank.
const Collection = "onboardingQuestions"

//go:embed questions.yaml
var bankYAML []byte

// Bank parses the built-in question bank, ordered by Order.
func Bank() ([]models.OnboardingQuestion, error) {
	var qs []models.OnboardingQuestion
	if err := yaml.Unmarshal(bankYAML, &qs); err != nil {
		return nil, fmt.Errorf("parse onboarding bank: %w", err)
	}
	for i, q := range qs {
		if q.ID == "" || len(q.Answers) == 0 {
			return nil, fmt.Errorf("onboarding bank entry %d is incomplete", i)
		}
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	return qs, nil
}

type Store struct {
	b docstore.Backend
}

func New(b docstore.Backend) *Store {
	return &Store{b: b}
}

// Seed inserts any bank question not already stored and returns how many
// were added. Existing questions are left as they are.
func (s *Store) Seed(ctx context.Context, qs []models.OnboardingQuestion) (int, error) {
	added := 0
	for _, q := range qs {
		q.Version = 1
		err := s.b.Create(ctx, Collection, q.ID, q)
		switch {
		case err == nil:
			added++
		case errors.Is(err, docstore.ErrExists):
		default:
			return added, fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return added, nil
}

// List returns the stored questions in quiz order.
func (s *Store) List(ctx context.Context) ([]models.OnboardingQuestion, error) {
	return docstore.Find[models.OnboardingQuestion](ctx, s.b, Collection, docstore.Query{OrderBy: "order"})
}
