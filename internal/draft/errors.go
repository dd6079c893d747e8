// Package draft holds the pieces shared by the draft subpackages: the error
// taxonomy every operation reports through, and the authorization policy.
package draft

import "errors"

// Error kinds surfaced by draft operations. All of them are recoverable
// precondition failures: callers classify with errors.Is and decide whether
// to re-read state and retry. None are fatal to the process.
var (
	// ErrNotAuthorized is returned on a host-only or team-ownership violation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound is returned when a draft, team, or player does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when the operation is not valid for the
	// draft's current status.
	ErrInvalidState = errors.New("invalid draft state")

	// ErrNotYourTurn is returned when the submitting team is not the team on
	// the clock.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrPlayerAlreadyPicked is returned when the player is already on a
	// committed pick in this draft.
	ErrPlayerAlreadyPicked = errors.New("player already picked")

	// ErrStaleTurn is returned when the caller's expected pick number does
	// not match the current cursor: the caller acted on outdated state and
	// must re-read before retrying.
	ErrStaleTurn = errors.New("stale turn")

	// ErrSchedulingConflict is returned when a commit loses the race for the
	// current pick number. Expected under normal concurrent play; the cursor
	// has already moved, so a blind retry against the same pick number will
	// never succeed.
	ErrSchedulingConflict = errors.New("scheduling conflict")

	// ErrTimingViolation is returned when start is requested before the
	// scheduled start time.
	ErrTimingViolation = errors.New("draft has not reached its scheduled start time")

	// ErrEmptyDraft is returned when start is requested with zero teams.
	ErrEmptyDraft = errors.New("draft has no teams")
)
