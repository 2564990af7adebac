package domain

import (
	"github.com/openaccel/beamauth/internal/errors"
)

// Directory errors.
var (
	// ErrStaffNotFound indicates no staff record exists for the given username or ID.
	ErrStaffNotFound = errors.Wrap(errors.ErrNotFound, "staff not found")

	// ErrWorkgroupNotFound indicates no workgroup exists for the given ID.
	ErrWorkgroupNotFound = errors.Wrap(errors.ErrNotFound, "workgroup not found")
)
