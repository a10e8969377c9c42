// internal/domain/models/feedback.go
package models

import "time"

// Difficulty ratings accepted on feedback.
const (
	DifficultyTooEasy   = "too_easy"
	DifficultyJustRight = "just_right"
	DifficultyTooHard   = "too_hard"
)

// Feedback is a post-quest survey answer.
type Feedback struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	QuestID     string    `bson:"quest_id,omitempty" json:"quest_id,omitempty"`
	Enjoyment   int       `bson:"enjoyment" json:"enjoyment"`
	Difficulty  string    `bson:"difficulty" json:"difficulty"`
	SocialFit   int       `bson:"social_fit" json:"social_fit"`
	WouldRepeat bool      `bson:"would_repeat" json:"would_repeat"`
	Comments    string    `bson:"comments" json:"comments"`
	Version     int64     `bson:"version" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
