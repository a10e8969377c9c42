// internal/app/catalog/catalog.go

// Package catalog reads, creates and garbage-collects quest documents.
// Listing never mutates; stale quests are expired by a background sweep.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	queststore "github.com/dalemusser/sidequest/internal/app/store/quests"
	"github.com/dalemusser/sidequest/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sidequest/internal/app/system/normalize"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"github.com/dalemusser/sidequest/internal/domain/questerr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultStaleGrace is how long after its start an empty quest is kept.
const DefaultStaleGrace = 2 * time.Hour

// Limits on quest input.
const (
	MaxTitleLen     = 120
	MaxTeamSizeCap  = 50
	MaxSkillLevel   = 5
	MaxDurationHour = 24 * 7
)

type Service struct {
	quests     *queststore.Store
	log        *zap.Logger
	staleGrace time.Duration
}

// New creates a catalog over b. staleGrace <= 0 uses DefaultStaleGrace.
func New(b docstore.Backend, logger *zap.Logger, staleGrace time.Duration) *Service {
	if staleGrace <= 0 {
		staleGrace = DefaultStaleGrace
	}
	return &Service{
		quests:     queststore.New(b),
		log:        logger,
		staleGrace: staleGrace,
	}
}

// ListJoinable returns quests that are not terminal and start after now,
// soonest first.
func (s *Service) ListJoinable(ctx context.Context, now time.Time) ([]models.Quest, error) {
	return s.quests.FindJoinable(ctx, now)
}

// Get loads one quest.
func (s *Service) Get(ctx context.Context, id string) (models.Quest, error) {
	q, err := s.quests.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Quest{}, questerr.ErrQuestNotFound
	}
	return q, err
}

// CreateInput is a new quest as submitted by a client.
type CreateInput struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Tags               []string  `json:"tags"`
	RequiredSkillLevel int       `json:"required_skill_level"`
	MinTeamSize        int       `json:"min_team_size"`
	MaxTeamSize        int       `json:"max_team_size"`
	Location           string    `json:"location"`
	DurationHours      float64   `json:"duration_hours"`
	EstimatedHours     float64   `json:"estimated_hours"`
	StartTime          time.Time `json:"start_time"`
}

// Create validates and sanitizes in, then stores it as an open quest.
func (s *Service) Create(ctx context.Context, in CreateInput, now time.Time) (models.Quest, error) {
	q := models.Quest{
		Title:              htmlsanitize.StripTags(in.Title),
		Description:        htmlsanitize.Sanitize(in.Description),
		Tags:               normalize.Tags(in.Tags),
		RequiredSkillLevel: in.RequiredSkillLevel,
		MinTeamSize:        in.MinTeamSize,
		MaxTeamSize:        in.MaxTeamSize,
		Location:           htmlsanitize.StripTags(in.Location),
		DurationHours:      in.DurationHours,
		EstimatedHours:     in.EstimatedHours,
		StartTime:          in.StartTime.UTC(),
		Status:             models.QuestOpen,
	}
	if q.RequiredSkillLevel == 0 {
		q.RequiredSkillLevel = models.DefaultSkillLevel
	}
	if q.MinTeamSize == 0 {
		q.MinTeamSize = 1
	}
	if err := validate(q, now); err != nil {
		return models.Quest{}, err
	}

	created, err := s.quests.Create(ctx, q)
	if err != nil {
		return models.Quest{}, err
	}
	s.log.Info("quest created",
		zap.String("quest_id", created.ID),
		zap.String("title", created.Title),
		zap.Time("start_time", created.StartTime))
	return created, nil
}

func validate(q models.Quest, now time.Time) error {
	switch {
	case q.Title == "":
		return questerr.Invalid("title is required")
	case len(q.Title) > MaxTitleLen:
		return questerr.Invalid(fmt.Sprintf("title must be at most %d characters", MaxTitleLen))
	case q.RequiredSkillLevel < 1 || q.RequiredSkillLevel > MaxSkillLevel:
		return questerr.Invalid(fmt.Sprintf("required skill level must be between 1 and %d", MaxSkillLevel))
	case q.MinTeamSize < 1:
		return questerr.Invalid("min team size must be at least 1")
	case q.MaxTeamSize < q.MinTeamSize:
		return questerr.Invalid("max team size must be at least min team size")
	case q.MaxTeamSize > MaxTeamSizeCap:
		return questerr.Invalid(fmt.Sprintf("max team size must be at most %d", MaxTeamSizeCap))
	case q.DurationHours <= 0 || q.DurationHours > MaxDurationHour:
		return questerr.Invalid("duration must be a positive number of hours up to one week")
	case q.EstimatedHours < 0:
		return questerr.Invalid("estimated hours cannot be negative")
	case !q.StartTime.After(now):
		return questerr.Invalid("start time must be in the future")
	}
	return nil
}

// Seed inserts quests that are not already stored (matched by id) and
// returns how many were added.
func (s *Service) Seed(ctx context.Context, quests []models.Quest) (int, error) {
	added := 0
	for _, q := range quests {
		_, err := s.quests.Create(ctx, q)
		switch {
		case err == nil:
			added++
		case errors.Is(err, docstore.ErrExists):
		default:
			return added, fmt.Errorf("seed quest %s: %w", q.ID, err)
		}
	}
	if added > 0 {
		s.log.Info("seeded quest catalog", zap.Int("added", added))
	}
	return added, nil
}

// SweepStale marks quests that nobody joined as expired once now is more
// than the stale grace past their start. Returns how many were expired.
func (s *Service) SweepStale(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.quests.FindStartedBefore(ctx, now.Add(-s.staleGrace))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, q := range candidates {
		if len(q.TeamMembers) > 0 {
			continue
		}
		q.Status = q.Status.Advance(models.QuestExpired)
		if err := s.quests.Save(ctx, &q); err != nil {
			if errors.Is(err, docstore.ErrConflict) || errors.Is(err, docstore.ErrNotFound) {
				// Someone joined or the expiry sweep got there first.
				s.log.Debug("stale sweep skipped quest", zap.String("quest_id", q.ID), zap.Error(err))
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

//go:embed seed.yaml
var seedYAML []byte

type seedEntry struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	Tags               []string `yaml:"tags"`
	RequiredSkillLevel int      `yaml:"required_skill_level"`
	MinTeamSize        int      `yaml:"min_team_size"`
	MaxTeamSize        int      `yaml:"max_team_size"`
	Location           string   `yaml:"location"`
	DurationHours      float64  `yaml:"duration_hours"`
	EstimatedHours     float64  `yaml:"estimated_hours"`
	StartIn            string   `yaml:"start_in"`
}

// DefaultSeed returns the built-in demo catalog with start times relative
// to now.
func DefaultSeed(now time.Time) ([]models.Quest, error) {
	var entries []seedEntry
	if err := yaml.Unmarshal(seedYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	out := make([]models.Quest, 0, len(entries))
	for _, e := range entries {
		offset, err := time.ParseDuration(e.StartIn)
		if err != nil {
			return nil, fmt.Errorf("seed quest %s: start_in: %w", e.ID, err)
		}
		q := models.Quest{
			ID:                 e.ID,
			Title:              e.Title,
			Description:        e.Description,
			Tags:               normalize.Tags(e.Tags),
			RequiredSkillLevel: e.RequiredSkillLevel,
			MinTeamSize:        e.MinTeamSize,
			MaxTeamSize:        e.MaxTeamSize,
			Location:           e.Location,
			DurationHours:      e.DurationHours,
			EstimatedHours:     e.EstimatedHours,
			StartTime:          now.Add(offset).UTC(),
			Status:             models.QuestOpen,
		}
		if err := validate(q, now); err != nil {
			return nil, fmt.Errorf("seed quest %s: %w", e.ID, err)
		}
		out = append(out, q)
	}
	return out, nil
}
