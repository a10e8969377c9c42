// internal/domain/models/onboarding.go
package models

// OnboardingAnswer is one selectable option of an onboarding question.
type OnboardingAnswer struct {
	Text string   `bson:"text" json:"text" yaml:"text"`
	Tags []string `bson:"tags" json:"tags" yaml:"tags"`
}

// OnboardingQuestion is static reference data for the personality quiz.
// Answers are keyed by option ("A", "B", ...).
type OnboardingQuestion struct {
	ID       string                      `bson:"_id" json:"id" yaml:"id"`
	Order    int                         `bson:"order" json:"order" yaml:"order"`
	Question string                      `bson:"question" json:"question" yaml:"question"`
	Answers  map[string]OnboardingAnswer `bson:"answers" json:"answers" yaml:"answers"`
	Version  int64                       `bson:"version" json:"-" yaml:"-"`
}
