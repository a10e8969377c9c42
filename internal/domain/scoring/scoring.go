// internal/domain/scoring/scoring.go

// Package scoring holds the weighted heuristics that rank quests for a user
// and users against each other. Every function is pure and returns a value
// in [0, 100].
package scoring

import (
	"math"

	"github.com/dalemusser/sidequest/internal/domain/models"
)

// Quest score weights.
const (
	questInterestWeight = 40
	questSkillWeight    = 30
	questTeamWeight     = 20
	questTimeWeight     = 10
	questTimeShortfall  = 5
)

// Compatibility weights.
const (
	compatSkillWeight    = 30
	compatInterestWeight = 30
	compatTraitWeight    = 20
	compatTeamWeight     = 20
)

const (
	skillSpan = 4.0 // skill levels run 1..5
	teamSpan  = 3.0
)

// QuestMatchScore rates how well a quest fits a user's preferences.
func QuestMatchScore(prefs models.UserPreferences, q models.Quest) float64 {
	score := overlap(prefs.Interests, q.Tags) * questInterestWeight
	score += closeness(prefs.SkillLevel, q.RequiredSkillLevel, skillSpan) * questSkillWeight
	score += closeness(prefs.PreferredTeamSize, q.MaxTeamSize, teamSpan) * questTeamWeight
	if prefs.AvailableHoursPerWeek >= q.CommitmentHours() {
		score += questTimeWeight
	} else {
		score += questTimeShortfall
	}
	total := float64(questInterestWeight + questSkillWeight + questTeamWeight + questTimeWeight)
	return clamp(score / total * 100)
}

// UserCompatibility rates two users against each other. It is symmetric.
func UserCompatibility(a, b models.UserPreferences) float64 {
	score := closeness(a.SkillLevel, b.SkillLevel, skillSpan) * compatSkillWeight
	score += overlap(a.Interests, b.Interests) * compatInterestWeight
	score += overlap(traitKeys(a.PersonalityTraits), traitKeys(b.PersonalityTraits)) * compatTraitWeight
	score += sizeRatio(a.PreferredTeamSize, b.PreferredTeamSize) * compatTeamWeight
	return clamp(score)
}

// TeamMatchScore rates a whole team for a quest: the mean of the average
// pairwise compatibility and the average quest fit. A single member is rated
// on quest fit alone.
func TeamMatchScore(q models.Quest, members []models.UserPreferences) float64 {
	if len(members) == 0 {
		return 0
	}

	var questSum float64
	for _, m := range members {
		questSum += QuestMatchScore(m, q)
	}
	questAvg := questSum / float64(len(members))
	if len(members) == 1 {
		return questAvg
	}

	var pairSum float64
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			pairSum += UserCompatibility(members[i], members[j])
			pairs++
		}
	}
	return clamp((pairSum/float64(pairs) + questAvg) / 2)
}

// overlap is |A ∩ B| / max(|A|, |B|) over distinct values.
func overlap(a, b []string) float64 {
	as, bs := set(a), set(b)
	denom := max(len(as), len(bs))
	if denom == 0 {
		return 0
	}
	shared := 0
	for k := range as {
		if _, ok := bs[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

func closeness(a, b int, span float64) float64 {
	return math.Max(0, 1-math.Abs(float64(a-b))/span)
}

func sizeRatio(a, b int) float64 {
	if a == b {
		return 1
	}
	if a <= 0 || b <= 0 {
		return 0
	}
	return float64(min(a, b)) / float64(max(a, b))
}

// traitKeys lists traits with a positive weight.
func traitKeys(traits map[string]int) []string {
	keys := make([]string, 0, len(traits))
	for k, v := range traits {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

func set(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
