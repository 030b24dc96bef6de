package evaluation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("evaluation not found")
	ErrAlreadyCompleted   = errors.New("evaluation already completed")
	ErrNoQuestionForTheme = errors.New("no questions available for theme")
)

// Reason names one unmet finalize guard.
type Reason string

const (
	ReasonNoQuestionDrawn    Reason = "no question drawn"
	ReasonRubricIncomplete   Reason = "rubric incomplete"
	ReasonInvalidObservation Reason = "observation must contain letters"
)

// RejectedError reports every guard a finalize attempt failed, so callers
// can surface the full list instead of a bare refusal.
type RejectedError struct {
	Reasons []Reason
}

func (e *RejectedError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return "finalize rejected: " + strings.Join(parts, "; ")
}

// ValidationError reports the problems of a rejected save-progress call.
// The call is a no-op: nothing is persisted when any input is malformed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Problems, "; "))
}
