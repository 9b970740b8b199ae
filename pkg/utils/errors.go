package utils

import "errors"

// Error codes used in the JSON error envelope.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func NewAppError(code, message string, details ...string) *AppError {
	err := &AppError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// Engine error taxonomy. Callers match with errors.Is.
var (
	// ErrFeedUnavailable wraps network or parse failures talking to the
	// external leaderboard. A sync run aborts on it; already-committed
	// writes are idempotent so the next scheduled run is safe.
	ErrFeedUnavailable = errors.New("leaderboard feed unavailable")

	// ErrNoActiveTournament is a no-op short-circuit, not a failure.
	ErrNoActiveTournament = errors.New("no active tournament")

	// ErrAmbiguousActiveTournament means more than one tournament row has
	// is_active set. The invariant is application-enforced, so this is a
	// handled state rather than an assumption.
	ErrAmbiguousActiveTournament = errors.New("multiple active tournaments")

	// ErrDuplicateEntryName rejects a submission whose entry name collides
	// with an existing entry under a different email.
	ErrDuplicateEntryName = errors.New("entry name already taken")
)
