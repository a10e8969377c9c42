// internal/domain/models/quest.go
package models

import "time"

// QuestStatus is the lifecycle state of a quest document.
type QuestStatus string

const (
	QuestOpen      QuestStatus = "open"
	QuestForming   QuestStatus = "forming"
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestExpired   QuestStatus = "expired"
)

// Terminal reports whether no further transitions are allowed.
func (s QuestStatus) Terminal() bool {
	return s == QuestCompleted || s == QuestExpired
}

// rank orders the non-terminal progression so status never moves backwards.
func (s QuestStatus) rank() int {
	switch s {
	case QuestForming:
		return 1
	case QuestActive:
		return 2
	case QuestCompleted, QuestExpired:
		return 3
	default:
		return 0
	}
}

// Advance returns the later of s and next in the open → forming → active order.
func (s QuestStatus) Advance(next QuestStatus) QuestStatus {
	if next.rank() > s.rank() {
		return next
	}
	return s
}

// Team member statuses.
const (
	MemberJoined = "joined"
	MemberSolo   = "solo"
)

// TeamMember is a user's join record embedded in a quest.
type TeamMember struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	JoinedAt    time.Time `bson:"joined_at" json:"joined_at"`
	Status      string    `bson:"status" json:"status"`
}

// Quest is one joinable group activity.
//
// NOTE:
//   - TeamMembers is the source of truth for team size; there is no separate
//     counter field to drift out of sync.
//   - Version is bumped on every write and used for optimistic concurrency.
type Quest struct {
	ID                 string       `bson:"_id" json:"id"`
	Title              string       `bson:"title" json:"title"`
	Description        string       `bson:"description" json:"description"`
	Tags               []string     `bson:"tags" json:"tags"`
	RequiredSkillLevel int          `bson:"required_skill_level" json:"required_skill_level"`
	MinTeamSize        int          `bson:"min_team_size" json:"min_team_size"`
	MaxTeamSize        int          `bson:"max_team_size" json:"max_team_size"`
	Location           string       `bson:"location" json:"location"`
	DurationHours      float64      `bson:"duration_hours" json:"duration_hours"`
	EstimatedHours     float64      `bson:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	StartTime          time.Time    `bson:"start_time" json:"start_time"`
	EndTime            *time.Time   `bson:"end_time,omitempty" json:"end_time,omitempty"`
	CompletedAt        *time.Time   `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Status             QuestStatus  `bson:"status" json:"status"`
	TeamMembers        []TeamMember `bson:"team_members" json:"team_members"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CommitmentHours is the weekly time the quest asks for.
// Older documents only carry DurationHours.
func (q Quest) CommitmentHours() float64 {
	if q.EstimatedHours > 0 {
		return q.EstimatedHours
	}
	return q.DurationHours
}

// HasMember reports whether userID is already on the team.
func (q Quest) HasMember(userID string) bool {
	for _, m := range q.TeamMembers {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ExpiryReference is the time the expiry sweep measures from.
func (q Quest) ExpiryReference() time.Time {
	if q.EndTime != nil {
		return *q.EndTime
	}
	return q.StartTime
}
