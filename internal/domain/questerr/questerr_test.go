package questerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{nil, ClassUnknown},
		{ErrQuestNotFound, ClassNotFound},
		{fmt.Errorf("load: %w", ErrUserNotFound), ClassNotFound},
		{ErrTeamFull, ClassPrecondition},
		{ErrConflict, ClassPrecondition},
		{Invalid("title is required"), ClassInvalid},
		{errors.New("disk on fire"), ClassUnknown},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.err); got != tt.want {
			t.Errorf("ClassOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("max team size must be at least min team size")
	if !errors.Is(err, ErrInvalid) {
		t.Error("Invalid should wrap ErrInvalid")
	}
	if err.Error() != "max team size must be at least min team size" {
		t.Errorf("message: got %q", err.Error())
	}
}
