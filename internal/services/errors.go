package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes; anything else is a transaction failure and surfaces
// as a 500 with nothing partially committed.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrSelfVote   = errors.New("cannot vote on your own answer")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
)
