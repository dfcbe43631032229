// Package command implements the command pipeline: pattern-driven parsing,
// argument resolution against live world state, and per-actor action queues
// with priorities and cooldowns. All execution happens on the game loop.
package command

import "fmt"

// ParseError means the line did not match the pattern's shape.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// ResolutionError means a referenced object is not present in the actor's
// context. The message is the user-facing line.
type ResolutionError struct {
	Argument string
	Message  string
}

func (e *ResolutionError) Error() string { return e.Message }

// PermissionError means the actor lacks the privilege for the operation.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// StateError means the action is not valid in the actor's current state.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}
