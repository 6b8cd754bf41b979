package service

import "errors"

var (
	// ErrUserSuspended rejects generation requests from suspended accounts.
	ErrUserSuspended = errors.New("user account is suspended")

	// ErrPersonaNotFound is returned when a request references a persona
	// the user does not own.
	ErrPersonaNotFound = errors.New("persona not found")
)
