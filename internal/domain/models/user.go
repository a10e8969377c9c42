// internal/domain/models/user.go
package models

import "time"

// Default preference profile for users who have not set preferences yet.
const (
	DefaultSkillLevel        = 1
	DefaultPreferredTeamSize = 2
	DefaultAvailableHours    = 5
)

// UserPreferences drives quest and teammate scoring.
type UserPreferences struct {
	Interests             []string       `bson:"interests" json:"interests"`
	SkillLevel            int            `bson:"skill_level" json:"skill_level"`
	PreferredTeamSize     int            `bson:"preferred_team_size" json:"preferred_team_size"`
	AvailableHoursPerWeek float64        `bson:"available_hours_per_week" json:"available_hours_per_week"`
	PersonalityTraits     map[string]int `bson:"personality_traits,omitempty" json:"personality_traits,omitempty"`
}

// DefaultPreferences returns the profile assigned at sign-up.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Interests:             []string{},
		SkillLevel:            DefaultSkillLevel,
		PreferredTeamSize:     DefaultPreferredTeamSize,
		AvailableHoursPerWeek: DefaultAvailableHours,
		PersonalityTraits:     map[string]int{},
	}
}

// CompletedQuest is a history entry appended when a quest completes.
type CompletedQuest struct {
	QuestID     string    `bson:"quest_id" json:"quest_id"`
	CompletedAt time.Time `bson:"completed_at" json:"completed_at"`
	Title       string    `bson:"title" json:"title"`
	TeamSize    int       `bson:"team_size" json:"team_size"`
	// Tags are copied from the quest, which the expiry sweep later deletes.
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
}

// User is the profile document for a signed-up student.
//
// NOTE:
//   - HasPreferences is false until the user saves preferences; matching
//     applies the new-user leniency rule while it is false.
//   - ActiveQuestID points at at most one quest at a time.
type User struct {
	ID                   string           `bson:"_id" json:"id"`
	DisplayName          string           `bson:"display_name" json:"display_name"`
	Email                string           `bson:"email" json:"email"`
	PasswordHash         string           `bson:"password_hash,omitempty" json:"-"`
	Preferences          UserPreferences  `bson:"preferences" json:"preferences"`
	HasPreferences       bool             `bson:"has_preferences" json:"has_preferences"`
	Onboarded            bool             `bson:"onboarded" json:"onboarded"`
	ActiveQuestID        *string          `bson:"active_quest_id,omitempty" json:"active_quest_id,omitempty"`
	ActiveQuestStartDate *time.Time       `bson:"active_quest_start_date,omitempty" json:"active_quest_start_date,omitempty"`
	CompletedQuests      []CompletedQuest `bson:"completed_quests" json:"completed_quests"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasActiveQuest reports whether the user is currently on a quest.
func (u User) HasActiveQuest() bool {
	return u.ActiveQuestID != nil && *u.ActiveQuestID != ""
}

// ClearActiveQuest drops the active quest pointer.
func (u *User) ClearActiveQuest() {
	u.ActiveQuestID = nil
	u.ActiveQuestStartDate = nil
}
