// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"

	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	feedbackstore "github.com/dalemusser/sidequest/internal/app/store/feedback"
	queststore "github.com/dalemusser/sidequest/internal/app/store/quests"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/domain/models"
)

// Counts is a point-in-time summary of the store.
type Counts struct {
	Users       int                        `json:"users"`
	OnQuest     int                        `json:"on_quest"`
	Quests      map[models.QuestStatus]int `json:"quests"`
	Feedback    int                        `json:"feedback"`
	Unavailable bool                       `json:"unavailable,omitempty"`
}

// Fetch returns the totals shown by `sidequestctl stats`.
// Tolerant: a failed read leaves that counter at 0 and sets Unavailable.
func Fetch(ctx context.Context, b docstore.Backend) Counts {
	out := Counts{Quests: map[models.QuestStatus]int{}}

	if users, err := docstore.Find[models.User](ctx, b, userstore.Collection, docstore.All); err == nil {
		out.Users = len(users)
		for _, u := range users {
			if u.HasActiveQuest() {
				out.OnQuest++
			}
		}
	} else {
		out.Unavailable = true
	}

	if quests, err := docstore.Find[models.Quest](ctx, b, queststore.Collection, docstore.All); err == nil {
		for _, q := range quests {
			out.Quests[q.Status]++
		}
	} else {
		out.Unavailable = true
	}

	if fb, err := b.Find(ctx, feedbackstore.Collection, docstore.All); err == nil {
		out.Feedback = len(fb)
	} else {
		out.Unavailable = true
	}

	return out
}
