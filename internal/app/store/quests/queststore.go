// internal/app/store/quests/queststore.go
package queststore

import (
	"context"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/google/uuid"
)

// Collection holds quest documents.
const Collection = "quests"

type Store struct {
	b docstore.Backend
}

func New(b docstore.Backend) *Store {
	return &Store{b: b}
}

// Get loads a quest by id. Returns docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.Quest, error) {
	return docstore.Get[models.Quest](ctx, s.b, Collection, id)
}

// Create inserts a quest, assigning an id when none is set.
func (s *Store) Create(ctx context.Context, q models.Quest) (models.Quest, error) {
	now := time.Now().UTC()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = models.QuestOpen
	}
	if q.TeamMembers == nil {
		q.TeamMembers = []models.TeamMember{}
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	q.StartTime = q.StartTime.UTC()
	q.Version = 1
	q.CreatedAt = now
	q.UpdatedAt = now
	if err := s.b.Create(ctx, Collection, q.ID, q); err != nil {
		return models.Quest{}, err
	}
	return q, nil
}

// Save writes q if nobody else has changed it since it was read.
// On success q.Version is advanced; on failure q is left untouched.
func (s *Store) Save(ctx context.Context, q *models.Quest) error {
	next := *q
	next.Version = q.Version + 1
	next.UpdatedAt = time.Now().UTC()
	if err := s.b.Replace(ctx, Collection, q.ID, next, q.Version); err != nil {
		return err
	}
	*q = next
	return nil
}

// Delete removes a quest.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.b.Delete(ctx, Collection, id)
}

// FindJoinable returns non-terminal quests starting after now, soonest first.
func (s *Store) FindJoinable(ctx context.Context, now time.Time) ([]models.Quest, error) {
	return docstore.Find[models.Quest](ctx, s.b, Collection, docstore.Query{
		Where: []docstore.Cond{
			docstore.Where("status", docstore.NotIn, terminalStatuses()),
			docstore.Where("start_time", docstore.Gt, now.UTC()),
		},
		OrderBy: "start_time",
	})
}

// FindStartedBefore returns non-terminal quests whose start time is before cutoff.
func (s *Store) FindStartedBefore(ctx context.Context, cutoff time.Time) ([]models.Quest, error) {
	return docstore.Find[models.Quest](ctx, s.b, Collection, docstore.Query{
		Where: []docstore.Cond{
			docstore.Where("status", docstore.NotIn, terminalStatuses()),
			docstore.Where("start_time", docstore.Lt, cutoff.UTC()),
		},
		OrderBy: "start_time",
	})
}

// FindExpiredBefore returns every quest whose expiry reference (end time,
// else start time) is before cutoff.
func (s *Store) FindExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Quest, error) {
	all, err := docstore.Find[models.Quest](ctx, s.b, Collection, docstore.All)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, q := range all {
		if q.ExpiryReference().Before(cutoff) {
			out = append(out, q)
		}
	}
	return out, nil
}

// List returns every quest in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Quest, error) {
	return docstore.Find[models.Quest](ctx, s.b, Collection, docstore.All)
}

func terminalStatuses() []string {
	return []string{string(models.QuestCompleted), string(models.QuestExpired)}
}
