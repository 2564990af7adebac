package domain

import (
	"github.com/openaccel/beamauth/internal/errors"
)

// Authorization errors.
var (
	// ErrAuthorizationNotFound indicates no authorization version exists yet.
	ErrAuthorizationNotFound = errors.Wrap(errors.ErrNotFound, "authorization not found")

	// ErrDestinationNotFound indicates a beam destination with the specified ID was not found.
	ErrDestinationNotFound = errors.Wrap(errors.ErrNotFound, "beam destination not found")
)
