// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/app/system/normalize"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/google/uuid"
)

// Collection holds user documents.
const Collection = "users"

type Store struct {
	b docstore.Backend
}

func New(b docstore.Backend) *Store {
	return &Store{b: b}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errEmailNeeded    = errors.New("email is required")
	errNameNeeded     = errors.New("display name is required")
)

// Get loads a user by id. Returns docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.User, error) {
	return docstore.Get[models.User](ctx, s.b, Collection, id)
}

// GetByEmail looks up a user by case-insensitive email. Returns docstore.ErrNotFound if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	users, err := docstore.Find[models.User](ctx, s.b, Collection, docstore.Query{
		Where: []docstore.Cond{docstore.Where("email", docstore.Eq, normalize.Email(email))},
		Limit: 1,
	})
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, docstore.ErrNotFound
	}
	return users[0], nil
}

// Create inserts a new user with the default preference profile after
// normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	u.DisplayName = normalize.Name(u.DisplayName)
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errEmailNeeded
	}
	if u.DisplayName == "" {
		return models.User{}, errNameNeeded
	}
	if !u.HasPreferences {
		u.Preferences = models.DefaultPreferences()
	}
	if u.CompletedQuests == nil {
		u.CompletedQuests = []models.CompletedQuest{}
	}

	now := time.Now().UTC()
	u.Version = 1
	u.CreatedAt = now
	u.UpdatedAt = now

	// Only Mongo has a unique email index; the check and the insert share a
	// unit of work so concurrent signups cannot both pass the check.
	err := s.b.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetByEmail(ctx, u.Email); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		if err := s.b.Create(ctx, Collection, u.ID, u); err != nil {
			if errors.Is(err, docstore.ErrExists) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Save writes u if nobody else has changed it since it was read.
// On success u.Version is advanced; on failure u is left untouched.
func (s *Store) Save(ctx context.Context, u *models.User) error {
	next := *u
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now().UTC()
	if err := s.b.Replace(ctx, Collection, u.ID, next, u.Version); err != nil {
		return err
	}
	*u = next
	return nil
}

// List returns every user in insertion order.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	return docstore.Find[models.User](ctx, s.b, Collection, docstore.All)
}

// FindByActiveQuest returns users whose active quest is questID.
func (s *Store) FindByActiveQuest(ctx context.Context, questID string) ([]models.User, error) {
	return docstore.Find[models.User](ctx, s.b, Collection, docstore.Query{
		Where: []docstore.Cond{docstore.Where("active_quest_id", docstore.Eq, questID)},
	})
}
