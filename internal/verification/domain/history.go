package domain

import (
	"time"

	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
)

// VerificationHistory is an append-only audit row recording one mutation of a
// control verification.
type VerificationHistory struct {
	ID                    int64
	ControlVerificationID int64
	Status                Status
	VerificationDate      *time.Time
	VerifiedBy            *directoryDomain.Staff
	ExpirationDate        *time.Time
	Comments              *string
	ModifiedBy            directoryDomain.Staff
	ModifiedDate          time.Time
}
