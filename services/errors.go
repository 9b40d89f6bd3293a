// services/errors.go - Error taxonomy for lifecycle and scoring operations
package services

import "errors"

// Sentinel errors returned by the lifecycle service. Handlers match
// them with errors.Is to pick a response status; anything else is a
// storage failure and surfaces as a 500.
var (
	ErrNotFound      = errors.New("puzzle not found")
	ErrNotOpen       = errors.New("puzzle is not open for submissions")
	ErrInvalidState  = errors.New("puzzle is not in a state that allows this operation")
	ErrConflict      = errors.New("another puzzle is already active")
	ErrRateLimited   = errors.New("creation limit reached, try again later")
	ErrForbidden     = errors.New("operation not permitted for this user")
	ErrAlreadySolved = errors.New("puzzle already solved by this user")
	ErrInvalidInput  = errors.New("invalid input")
)
