package game

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the core. All of them are local and
// recoverable: a rejected event leaves GameState unchanged and is
// reported upward for the transport layer to relay.
var (
	// ErrIllegalTransition marks an event that is not valid in the
	// current phase.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrValidation marks a rejected configuration or assignment
	// (pack conflicts, role/player count mismatch). No partial mutation
	// occurs.
	ErrValidation = errors.New("validation error")

	// ErrConstraint marks a rejected per-player submission (dead actor,
	// dead target, wrong role). Other players' recorded submissions are
	// unaffected.
	ErrConstraint = errors.New("constraint violation")

	// ErrExhaustedFallback marks a random selection that ran out of
	// attempts and degraded to a safe default.
	ErrExhaustedFallback = errors.New("fallback exhausted")
)

func newValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func newConstraintError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstraint, fmt.Sprintf(format, args...))
}

func newIllegalTransition(phase Phase, kind EventKind) error {
	return fmt.Errorf("%w: event %s in phase %s", ErrIllegalTransition, kind, phase)
}
