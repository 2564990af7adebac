package domain

import (
	"github.com/openaccel/beamauth/internal/errors"
)

// Verification errors.
var (
	// ErrVerificationNotFound indicates no verification exists for the
	// requested control and destination.
	ErrVerificationNotFound = errors.Wrap(errors.ErrNotFound, "control verification not found")

	// ErrControlNotFound indicates a credited control with the specified ID was not found.
	ErrControlNotFound = errors.Wrap(errors.ErrNotFound, "credited control not found")
)
