// Package domain contains the credited control verification entities.
package domain

import "time"

// Status is a credited control verification status code. Lower values carry
// stronger assurance, so a numeric increase is a downgrade.
type Status int

// Verification status codes.
const (
	StatusVerified    Status = 1
	StatusProvisional Status = 50
	StatusNotVerified Status = 100
)

// UpcomingVerificationWindow is the look-ahead used when reporting
// verifications that are about to expire.
const UpcomingVerificationWindow = 7 * 24 * time.Hour

// ExpiredComment is recorded in the audit history when the scanner demotes an
// expired verification.
const ExpiredComment = "Expired"

// String returns the human readable label for the status code.
func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "Verified"
	case StatusProvisional:
		return "Provisionally Verified"
	case StatusNotVerified:
		return "Not Verified"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the three defined status codes.
func (s Status) Valid() bool {
	switch s {
	case StatusVerified, StatusProvisional, StatusNotVerified:
		return true
	}
	return false
}

// IsDowngrade reports whether moving from oldStatus to newStatus weakens the
// verification. Equal statuses and upgrades are not downgrades.
func IsDowngrade(oldStatus, newStatus Status) bool {
	return newStatus != oldStatus && newStatus > oldStatus
}
