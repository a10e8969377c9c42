// internal/app/lifecycle/lifecycle.go

// Package lifecycle moves quests through open, forming, active and
// completed, and keeps each user's active quest pointer in step.
//
// Every mutation is a read-modify-write inside Backend.WithTx. Version
// conflicts are retried a bounded number of times before ErrConflict is
// returned.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	queststore "github.com/dalemusser/sidequest/internal/app/store/quests"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"go.uber.org/zap"
)

var (
	ErrQuestNotFound    = questerr.ErrQuestNotFound
	ErrUserNotFound     = questerr.ErrUserNotFound
	ErrQuestUnavailable = questerr.ErrQuestUnavailable
	ErrAlreadyActive    = questerr.ErrAlreadyActive
	ErrAlreadyJoined    = questerr.ErrAlreadyJoined
	ErrTeamFull         = questerr.ErrTeamFull
	ErrNotMember        = questerr.ErrNotMember
	ErrConflict         = questerr.ErrConflict
)

// CompletionPolicy decides who may complete a quest.
type CompletionPolicy string

const (
	// QuestWide lets any signed-in user complete any live quest.
	QuestWide CompletionPolicy = "quest_wide"
	// MembersOnly requires the caller's active quest to be the one completed.
	MembersOnly CompletionPolicy = "members_only"
)

// ParseCompletionPolicy accepts the config spelling of a policy.
// An empty string selects QuestWide.
func ParseCompletionPolicy(s string) (CompletionPolicy, error) {
	switch CompletionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", QuestWide:
		return QuestWide, nil
	case MembersOnly:
		return MembersOnly, nil
	default:
		return "", fmt.Errorf("unknown completion policy %q (want %s or %s)", s, QuestWide, MembersOnly)
	}
}

// Defaults.
const (
	DefaultExpiryGrace = 24 * time.Hour
	DefaultMaxAttempts = 3
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Policy      CompletionPolicy
	ExpiryGrace time.Duration
	MaxAttempts int
	Now         func() time.Time
}

type Service struct {
	b      docstore.Backend
	quests *queststore.Store
	users  *userstore.Store
	log    *zap.Logger
	obs    metrics.Observer

	policy      CompletionPolicy
	expiryGrace time.Duration
	maxAttempts int
	now         func() time.Time
}

// New creates a lifecycle service over b. obs may be nil.
func New(b docstore.Backend, logger *zap.Logger, obs metrics.Observer, opts Options) *Service {
	if obs == nil {
		obs = metrics.Nop{}
	}
	s := &Service{
		b:           b,
		quests:      queststore.New(b),
		users:       userstore.New(b),
		log:         logger,
		obs:         obs,
		policy:      opts.Policy,
		expiryGrace: opts.ExpiryGrace,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
	if s.policy == "" {
		s.policy = QuestWide
	}
	if s.expiryGrace <= 0 {
		s.expiryGrace = DefaultExpiryGrace
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Policy reports the configured completion policy.
func (s *Service) Policy() CompletionPolicy { return s.policy }

// Join adds userID to the quest's team and makes it the user's active quest.
// A solo start, or reaching the minimum team size, activates the quest.
func (s *Service) Join(ctx context.Context, questID, userID string, startSolo bool) (models.Quest, error) {
	var out models.Quest
	err := s.run(ctx, "join", func(ctx context.Context) error {
		now := s.now()

		q, err := s.loadQuest(ctx, questID)
		if err != nil {
			return err
		}
		if q.Status.Terminal() || !now.Before(q.StartTime) {
			return ErrQuestUnavailable
		}
		u, err := s.loadUser(ctx, userID)
		if err != nil {
			return err
		}
		if u.HasActiveQuest() {
			return ErrAlreadyActive
		}
		if q.HasMember(userID) {
			return ErrAlreadyJoined
		}
		if len(q.TeamMembers) >= q.MaxTeamSize {
			return ErrTeamFull
		}

		member := models.TeamMember{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			JoinedAt:    now,
			Status:      models.MemberJoined,
		}
		if startSolo {
			member.Status = models.MemberSolo
		}
		q.TeamMembers = append(q.TeamMembers, member)

		next := models.QuestForming
		if startSolo || len(q.TeamMembers) >= q.MinTeamSize {
			next = models.QuestActive
		}
		q.Status = q.Status.Advance(next)
		end := now.Add(time.Duration(q.DurationHours * float64(time.Hour)))
		q.EndTime = &end

		active := q.ID
		u.ActiveQuestID = &active
		u.ActiveQuestStartDate = &now

		if err := s.quests.Save(ctx, &q); err != nil {
			return err
		}
		if err := s.users.Save(ctx, &u); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return models.Quest{}, err
	}
	s.log.Info("quest joined",
		zap.String("quest_id", out.ID),
		zap.String("user_id", userID),
		zap.String("status", string(out.Status)),
		zap.Int("team_size", len(out.TeamMembers)),
		zap.Bool("solo", startSolo))
	return out, nil
}

// Complete finishes a live quest. Every user pointing at it gets a history
// entry and a cleared active quest.
func (s *Service) Complete(ctx context.Context, questID, callerID string) (models.Quest, error) {
	var (
		out     models.Quest
		members int
	)
	err := s.run(ctx, "complete", func(ctx context.Context) error {
		now := s.now()

		q, err := s.loadQuest(ctx, questID)
		if err != nil {
			return err
		}
		if q.Status.Terminal() {
			return ErrQuestUnavailable
		}
		if s.policy == MembersOnly {
			caller, err := s.loadUser(ctx, callerID)
			if err != nil {
				return err
			}
			if caller.ActiveQuestID == nil || *caller.ActiveQuestID != q.ID {
				return ErrNotMember
			}
		}

		users, err := s.users.FindByActiveQuest(ctx, q.ID)
		if err != nil {
			return err
		}
		for i := range users {
			u := &users[i]
			u.ClearActiveQuest()
			u.CompletedQuests = append(u.CompletedQuests, models.CompletedQuest{
				QuestID:     q.ID,
				CompletedAt: now,
				Title:       q.Title,
				TeamSize:    len(q.TeamMembers),
				Tags:        q.Tags,
			})
			if err := s.users.Save(ctx, u); err != nil {
				return err
			}
		}

		q.Status = models.QuestCompleted
		q.CompletedAt = &now
		if err := s.quests.Save(ctx, &q); err != nil {
			return err
		}
		out, members = q, len(users)
		return nil
	})
	if err != nil {
		return models.Quest{}, err
	}
	s.log.Info("quest completed",
		zap.String("quest_id", out.ID),
		zap.String("caller_id", callerID),
		zap.Int("members", members))
	return out, nil
}

// ExpireSweep deletes quests whose end (or start, when no end is set) is
// more than the expiry grace before now, clearing the active quest of every
// user still pointing at them. It returns the number of quests removed.
func (s *Service) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()
	cutoff := now.Add(-s.expiryGrace)

	expired, err := s.quests.FindExpiredBefore(ctx, cutoff)
	if err != nil {
		s.obs.ObserveOperation("expire_sweep", metrics.OutcomeError, time.Since(start))
		return 0, fmt.Errorf("find expired quests: %w", err)
	}

	removed := 0
	for _, q := range expired {
		err := s.retry(ctx, "expire_sweep", func(ctx context.Context) error {
			return s.expireOne(ctx, q.ID, cutoff)
		})
		switch {
		case err == nil:
			removed++
		case errors.Is(err, ErrQuestNotFound), errors.Is(err, errSkip):
			// Gone or revived since the scan.
		default:
			s.obs.ObserveOperation("expire_sweep", metrics.OutcomeError, time.Since(start))
			return removed, fmt.Errorf("expire quest %s: %w", q.ID, err)
		}
	}
	s.obs.ObserveOperation("expire_sweep", metrics.OutcomeOK, time.Since(start))
	return removed, nil
}

var errSkip = errors.New("quest no longer expired")

func (s *Service) expireOne(ctx context.Context, questID string, cutoff time.Time) error {
	q, err := s.loadQuest(ctx, questID)
	if err != nil {
		return err
	}
	if !q.ExpiryReference().Before(cutoff) {
		return errSkip
	}
	users, err := s.users.FindByActiveQuest(ctx, q.ID)
	if err != nil {
		return err
	}
	for i := range users {
		users[i].ClearActiveQuest()
		if err := s.users.Save(ctx, &users[i]); err != nil {
			return err
		}
	}
	if err := s.quests.Delete(ctx, q.ID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrQuestNotFound
		}
		return err
	}
	s.log.Debug("quest expired",
		zap.String("quest_id", q.ID),
		zap.Int("cleared_users", len(users)))
	return nil
}

// run executes one lifecycle operation with retries and records its outcome.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := s.retry(ctx, op, fn)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case questerr.ClassOf(err) != questerr.ClassUnknown:
		outcome = metrics.OutcomeRejected
		s.log.Warn("quest operation rejected", zap.String("op", op), zap.Error(err))
	default:
		outcome = metrics.OutcomeError
		s.log.Error("quest operation failed", zap.String("op", op), zap.Error(err))
	}
	s.obs.ObserveOperation(op, outcome, time.Since(start))
	return err
}

// retry runs fn in a transaction, retrying on version conflicts.
func (s *Service) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := s.b.WithTx(ctx, fn)
		if !errors.Is(err, docstore.ErrConflict) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%s after %d attempts: %w", op, attempt, ErrConflict)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.obs.AddConflictRetry(op)
		s.log.Debug("version conflict; retrying", zap.String("op", op), zap.Int("attempt", attempt))
	}
}

func (s *Service) loadQuest(ctx context.Context, id string) (models.Quest, error) {
	q, err := s.quests.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Quest{}, ErrQuestNotFound
	}
	return q, err
}

func (s *Service) loadUser(ctx context.Context, id string) (models.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}
