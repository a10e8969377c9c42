// internal/domain/questerr/questerr.go

// Package questerr is the error taxonomy shared by the quest catalog,
// matching and lifecycle services. Messages are written for end users and
// are surfaced verbatim.
package questerr

import "errors"

// Class groups errors by how callers should react.
type Class int

const (
	ClassUnknown Class = iota
	ClassNotFound
	ClassPrecondition
	ClassInvalid
)

var (
	ErrQuestNotFound = errors.New("quest not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrQuestUnavailable = errors.New("this quest is no longer open to join")
	ErrAlreadyActive    = errors.New("you already have an active quest")
	ErrAlreadyJoined    = errors.New("you have already joined this quest")
	ErrTeamFull         = errors.New("this quest's team is full")
	ErrNotMember        = errors.New("only members of this quest can complete it")
	ErrConflict         = errors.New("the quest changed while we were updating it; please try again")

	// ErrInvalid is wrapped with a field-specific message.
	ErrInvalid = errors.New("invalid input")
)

// ClassOf reports the class of err, or ClassUnknown.
func ClassOf(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrQuestNotFound), errors.Is(err, ErrUserNotFound):
		return ClassNotFound
	case errors.Is(err, ErrQuestUnavailable),
		errors.Is(err, ErrAlreadyActive),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrConflict):
		return ClassPrecondition
	case errors.Is(err, ErrInvalid):
		return ClassInvalid
	default:
		return ClassUnknown
	}
}

// Invalid wraps ErrInvalid with msg, which becomes the user-facing text.
func Invalid(msg string) error {
	return &invalidError{msg: msg}
}

type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return ErrInvalid }
