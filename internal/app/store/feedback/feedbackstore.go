// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/google/uuid"
)

// Collection holds post-quest feedback.
const Collection = "feedback"

type Store struct {
	b docstore.Backend
}

func New(b docstore.Backend) *Store {
	return &Store{b: b}
}

// Create stores a feedback entry.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	f.ID = uuid.NewString()
	f.Version = 1
	f.CreatedAt = time.Now().UTC()
	if err := s.b.Create(ctx, Collection, f.ID, f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// ListByUser returns a user's feedback, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	return docstore.Find[models.Feedback](ctx, s.b, Collection, docstore.Query{
		Where:   []docstore.Cond{docstore.Where("user_id", docstore.Eq, userID)},
		OrderBy: "created_at",
		Desc:    true,
	})
}

// List returns all feedback in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Feedback, error) {
	return docstore.Find[models.Feedback](ctx, s.b, Collection, docstore.All)
}
