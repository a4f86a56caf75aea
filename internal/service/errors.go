package service

import "errors"

// ErrNotFound covers both an unknown job ID and an ownership mismatch on
// status or cancel. The two cases are deliberately indistinguishable to
// callers.
var ErrNotFound = errors.New("not found or not cancellable")

// ValidationError rejects a submission before a job ID is even created:
// missing required fields, a malformed exchange code or an unknown game
// variant.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
