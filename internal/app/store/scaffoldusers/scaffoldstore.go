// internal/app/store/scaffoldusers/scaffoldstore.go
package scaffoldstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/domain/models"
)

const (
	// Collection holds scaffold user records.
	Collection = "scaffold_users"

	countersCollection = "counters"
	counterID          = Collection
)

type counter struct {
	ID      string `bson:"_id"`
	Seq     int64  `bson:"seq"`
	Version int64  `bson:"version"`
}

type Store struct {
	b docstore.Backend
}

func New(b docstore.Backend) *Store {
	return &Store{b: b}
}

func key(seq int64) string {
	return strconv.FormatInt(seq, 10)
}

// List returns every record in creation order.
func (s *Store) List(ctx context.Context) ([]models.ScaffoldUser, error) {
	return docstore.Find[models.ScaffoldUser](ctx, s.b, Collection, docstore.Query{OrderBy: "seq"})
}

// Get loads one record. Returns docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, seq int64) (models.ScaffoldUser, error) {
	return docstore.Get[models.ScaffoldUser](ctx, s.b, Collection, key(seq))
}

// Create stores fields under the next sequential id.
func (s *Store) Create(ctx context.Context, fields map[string]any) (models.ScaffoldUser, error) {
	var out models.ScaffoldUser
	err := s.b.WithTx(ctx, func(ctx context.Context) error {
		seq, err := s.next(ctx)
		if err != nil {
			return err
		}
		out = models.ScaffoldUser{Key: key(seq), Seq: seq, Fields: fields, Version: 1}
		return s.b.Create(ctx, Collection, out.Key, out)
	})
	if err != nil {
		return models.ScaffoldUser{}, err
	}
	return out, nil
}

// next advances the sequence counter, creating it on first use.
func (s *Store) next(ctx context.Context) (int64, error) {
	c, err := docstore.Get[counter](ctx, s.b, countersCollection, counterID)
	if errors.Is(err, docstore.ErrNotFound) {
		c = counter{ID: counterID, Seq: 1, Version: 1}
		if err := s.b.Create(ctx, countersCollection, counterID, c); err != nil {
			return 0, err
		}
		return c.Seq, nil
	}
	if err != nil {
		return 0, err
	}
	c.Seq++
	c.Version++
	if err := s.b.Replace(ctx, countersCollection, counterID, c, c.Version-1); err != nil {
		return 0, err
	}
	return c.Seq, nil
}

// Update replaces a record's fields.
func (s *Store) Update(ctx context.Context, seq int64, fields map[string]any) (models.ScaffoldUser, error) {
	cur, err := s.Get(ctx, seq)
	if err != nil {
		return models.ScaffoldUser{}, err
	}
	next := cur
	next.Fields = fields
	next.Version = cur.Version + 1
	if err := s.b.Replace(ctx, Collection, cur.Key, next, cur.Version); err != nil {
		return models.ScaffoldUser{}, err
	}
	return next, nil
}

// Delete removes a record and returns it as it was.
func (s *Store) Delete(ctx context.Context, seq int64) (models.ScaffoldUser, error) {
	cur, err := s.Get(ctx, seq)
	if err != nil {
		return models.ScaffoldUser{}, err
	}
	if err := s.b.Delete(ctx, Collection, cur.Key); err != nil {
		return models.ScaffoldUser{}, err
	}
	return cur, nil
}
