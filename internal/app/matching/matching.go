// internal/app/matching/matching.go

// Package matching ranks quests for a user and teammates for a quest.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"github.com/dalemusser/sidequest/internal/domain/scoring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults and thresholds.
const (
	DefaultTopN          = 6
	DefaultTeammateLimit = 2

	// QuestThreshold is the score a quest must beat to be recommended to a
	// user with saved preferences.
	QuestThreshold = 70.0
	// TeammateThreshold applies to both compatibility and quest fit.
	TeammateThreshold = 70.0
)

// Catalog is the quest source the engine ranks.
type Catalog interface {
	ListJoinable(ctx context.Context, now time.Time) ([]models.Quest, error)
	Get(ctx context.Context, id string) (models.Quest, error)
}

// QuestMatch is a recommended quest.
type QuestMatch struct {
	Quest      models.Quest `json:"quest"`
	MatchScore float64      `json:"match_score"`
}

// TeammateMatch is a recommended teammate for a quest.
type TeammateMatch struct {
	UserID             string  `json:"user_id"`
	DisplayName        string  `json:"display_name"`
	CompatibilityScore float64 `json:"compatibility_score"`
	QuestMatchScore    float64 `json:"quest_match_score"`
	CombinedScore      float64 `json:"combined_score"`
}

// ProposedMember is one member of a team proposal.
type ProposedMember struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// TeamProposal is an unsaved team suggestion.
type TeamProposal struct {
	QuestID    string             `json:"quest_id"`
	Members    []ProposedMember   `json:"members"`
	Status     models.QuestStatus `json:"status"`
	MatchScore float64            `json:"match_score"`
}

type Engine struct {
	catalog Catalog
	users   *userstore.Store
	log     *zap.Logger
	obs     metrics.Observer
	now     func() time.Time
}

// New creates an engine. obs may be nil.
func New(catalog Catalog, b docstore.Backend, logger *zap.Logger, obs metrics.Observer) *Engine {
	if obs == nil {
		obs = metrics.Nop{}
	}
	return &Engine{
		catalog: catalog,
		users:   userstore.New(b),
		log:     logger,
		obs:     obs,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the engine's time source. Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) loadUser(ctx context.Context, id string) (models.User, error) {
	u, err := e.users.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, questerr.ErrUserNotFound
	}
	return u, err
}

// RecommendQuests scores every joinable quest for the user and returns the
// best topN (topN <= 0 means DefaultTopN). Users who have not saved
// preferences are scored on the default profile and see every quest;
// everyone else only sees quests scoring above QuestThreshold.
func (e *Engine) RecommendQuests(ctx context.Context, userID string, topN int) (out []QuestMatch, err error) {
	defer e.observe("recommend_quests", time.Now(), &err)
	if topN <= 0 {
		topN = DefaultTopN
	}

	u, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	quests, err := e.catalog.ListJoinable(ctx, e.now())
	if err != nil {
		return nil, fmt.Errorf("list joinable quests: %w", err)
	}

	prefs := u.Preferences
	lenient := !u.HasPreferences
	if lenient {
		prefs = models.DefaultPreferences()
	}

	out = make([]QuestMatch, 0, len(quests))
	for _, q := range quests {
		score := scoring.QuestMatchScore(prefs, q)
		if !lenient && score <= QuestThreshold {
			continue
		}
		out = append(out, QuestMatch{Quest: q, MatchScore: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// RecommendTeammates ranks other users for a quest by the average of their
// compatibility with the requester and their own fit for the quest. Users
// already on a quest or already on this team are skipped.
func (e *Engine) RecommendTeammates(ctx context.Context, userID, questID string, limit int) (out []TeammateMatch, err error) {
	defer e.observe("recommend_teammates", time.Now(), &err)
	if limit <= 0 {
		limit = DefaultTeammateLimit
	}

	var (
		quest     models.Quest
		requester models.User
		everyone  []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quest, err = e.catalog.Get(gctx, questID)
		return err
	})
	g.Go(func() error {
		var err error
		requester, err = e.loadUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		everyone, err = e.users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = []TeammateMatch{}
	for _, c := range everyone {
		if c.ID == requester.ID || c.HasActiveQuest() || quest.HasMember(c.ID) {
			continue
		}
		compat := scoring.UserCompatibility(requester.Preferences, c.Preferences)
		fit := scoring.QuestMatchScore(c.Preferences, quest)
		if compat < TeammateThreshold || fit < TeammateThreshold {
			continue
		}
		out = append(out, TeammateMatch{
			UserID:             c.ID,
			DisplayName:        c.DisplayName,
			CompatibilityScore: compat,
			QuestMatchScore:    fit,
			CombinedScore:      (compat + fit) / 2,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CombinedScore > out[j].CombinedScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ProposeTeam scores the requester plus teammateIDs as a team for a quest.
// Nothing is saved.
func (e *Engine) ProposeTeam(ctx context.Context, userID, questID string, teammateIDs []string) (p TeamProposal, err error) {
	defer e.observe("propose_team", time.Now(), &err)

	ids := []string{userID}
	seen := map[string]bool{userID: true}
	for _, id := range teammateIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var quest models.Quest
	members := make([]models.User, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quest, err = e.catalog.Get(gctx, questID)
		return err
	})
	for i, id := range ids {
		g.Go(func() error {
			u, err := e.loadUser(gctx, id)
			if err != nil {
				return err
			}
			members[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TeamProposal{}, err
	}

	prefs := make([]models.UserPreferences, len(members))
	p = TeamProposal{
		QuestID: quest.ID,
		Members: make([]ProposedMember, len(members)),
		Status:  models.QuestForming,
	}
	for i, m := range members {
		prefs[i] = m.Preferences
		p.Members[i] = ProposedMember{UserID: m.ID, DisplayName: m.DisplayName}
	}
	p.MatchScore = scoring.TeamMatchScore(quest, prefs)
	return p, nil
}

func (e *Engine) observe(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeOK
	if err := *errp; err != nil {
		outcome = metrics.OutcomeError
		if questerr.ClassOf(err) != questerr.ClassUnknown {
			outcome = metrics.OutcomeRejected
		}
	}
	e.obs.ObserveOperation(op, outcome, time.Since(start))
}
