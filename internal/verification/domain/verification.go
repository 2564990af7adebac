package domain

import (
	"time"

	directoryDomain "github.com/openaccel/beamauth/internal/directory/domain"
)

// ControlVerification records the verification state of one credited control
// at one beam destination. At most one row exists per (control, destination)
// pair.
type ControlVerification struct {
	ID              int64
	CreditedControl *CreditedControl
	DestinationID   int64
	DestinationName string
	Status          Status
	// VerificationDate and VerifiedBy describe the act of verifying and are
	// nil for rows created by Toggle that were never verified.
	VerificationDate *time.Time
	VerifiedBy       *directoryDomain.Staff
	ExpirationDate   *time.Time
	Comments         *string
	ModifiedBy       directoryDomain.Staff
	ModifiedDate     time.Time
}

// Expired reports whether the verification carries an expiration date in the
// past relative to now.
func (v *ControlVerification) Expired(now time.Time) bool {
	return v.ExpirationDate != nil && v.ExpirationDate.Before(now)
}

// Snapshot captures the verification's current state as a history row. Call
// after a mutation so the audit trail records what was written.
func (v *ControlVerification) Snapshot() *VerificationHistory {
	h := &VerificationHistory{
		ControlVerificationID: v.ID,
		Status:                v.Status,
		ModifiedBy:            v.ModifiedBy,
		ModifiedDate:          v.ModifiedDate,
	}
	if v.VerificationDate != nil {
		d := *v.VerificationDate
		h.VerificationDate = &d
	}
	if v.VerifiedBy != nil {
		s := *v.VerifiedBy
		h.VerifiedBy = &s
	}
	if v.ExpirationDate != nil {
		d := *v.ExpirationDate
		h.ExpirationDate = &d
	}
	if v.Comments != nil {
		c := *v.Comments
		h.Comments = &c
	}
	return h
}
