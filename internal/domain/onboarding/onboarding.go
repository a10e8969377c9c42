// internal/domain/onboarding/onboarding.go

// Package onboarding turns quiz answers and post-quest feedback into the
// personality-trait tally stored on a user's preferences.
package onboarding

import (
	"errors"
	"fmt"

	"github.com/dalemusser/sidequest/internal/domain/models"
)

// ErrUnknownOption is returned when an answer names an option the question
// does not offer.
var ErrUnknownOption = errors.New("unknown answer option")

// Enjoyment thresholds for ApplyFeedback.
const (
	LikedFrom    = 4
	DislikedUpTo = 2
)

// Tally counts one point per tag of each selected answer. answers[i] is the
// option key chosen for questions[i]; answers past the last question are
// ignored, and fewer answers than questions tally what was answered.
func Tally(questions []models.OnboardingQuestion, answers []string) (map[string]int, error) {
	tally := make(map[string]int)
	for i, key := range answers {
		if i >= len(questions) {
			break
		}
		q := questions[i]
		ans, ok := q.Answers[key]
		if !ok {
			return nil, fmt.Errorf("question %d (%s) option %q: %w", i+1, q.ID, key, ErrUnknownOption)
		}
		for _, tag := range ans.Tags {
			tally[tag]++
		}
	}
	return tally, nil
}

// ApplyFeedback nudges traits toward or away from a quest's tags.
// Enjoyment of LikedFrom or more adds one per tag; DislikedUpTo or less
// removes one, dropping traits that reach zero. The input map is not
// modified.
func ApplyFeedback(traits map[string]int, questTags []string, enjoyment int) map[string]int {
	out := make(map[string]int, len(traits)+len(questTags))
	for k, v := range traits {
		out[k] = v
	}

	var delta int
	switch {
	case enjoyment >= LikedFrom:
		delta = 1
	case enjoyment <= DislikedUpTo:
		delta = -1
	default:
		return out
	}

	for _, tag := range questTags {
		v := out[tag] + delta
		if v <= 0 {
			delete(out, tag)
			continue
		}
		out[tag] = v
	}
	return out
}
