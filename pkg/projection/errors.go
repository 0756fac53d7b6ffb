package projection

import (
	"errors"
	"fmt"
)

// ErrInvalidGoalState is returned when a GoalState cannot be projected
// because its amounts are negative or contradict each other. Retrying with the
// same input always fails.
var ErrInvalidGoalState = errors.New("invalid goal state")

// InvalidGoalStateError names the offending field.
type InvalidGoalStateError struct {
	GoalID string
	Field  string
	Reason string
}

func (e *InvalidGoalStateError) Error() string {
	if e.GoalID != "" {
		return fmt.Sprintf("invalid goal state for %s: %s %s", e.GoalID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid goal state: %s %s", e.Field, e.Reason)
}

func (e *InvalidGoalStateError) Unwrap() error {
	return ErrInvalidGoalState
}

// IsInvalidGoalState returns true if err was caused by bad caller input.
func IsInvalidGoalState(err error) bool {
	return errors.Is(err, ErrInvalidGoalState)
}

func invalid(state GoalState, field, reason string) error {
	return &InvalidGoalStateError{GoalID: state.GoalID, Field: field, Reason: reason}
}
