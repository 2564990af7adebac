// Package domain defines the director's authorization domain models.
// An Authorization is one immutable version of the per-destination permission
// set; permissions change only by cloning the current version forward and
// persisting the clone, never by mutating existing rows.
package domain

import "time"

// BeamModeNone is the beam mode denoting that no beam is permitted.
const BeamModeNone = "None"

// UpcomingAuthorizationWindow is the look-ahead window for reporting
// director's authorizations that are about to expire.
const UpcomingAuthorizationWindow = 3 * 24 * time.Hour

// Authorization is one version of the director-level permission set.
// The version with the highest ID is the current one.
type Authorization struct {
	ID           int64
	CreatedAt    time.Time
	Destinations []*DestinationAuthorization
}

// CloneForward produces a new, not-yet-persisted Authorization version with a
// parallel clone of every destination row. Callers mutate the returned clones
// before committing; the source version is left untouched.
func (a *Authorization) CloneForward(now time.Time) *Authorization {
	clone := &Authorization{
		CreatedAt:    now,
		Destinations: make([]*DestinationAuthorization, 0, len(a.Destinations)),
	}

	for _, dest := range a.Destinations {
		clone.Destinations = append(clone.Destinations, dest.Clone())
	}

	return clone
}

// DestinationAuthorization is one row within an Authorization version,
// keyed by (destination, version).
type DestinationAuthorization struct {
	DestinationID   int64
	AuthorizationID int64
	DestinationName string
	BeamMode        string
	CWLimit         *float64
	ExpirationDate  *time.Time
	Comments        *string
}

// Clone copies the row for inclusion in a new version. The version key is
// zeroed; it is assigned when the new version is persisted.
func (d *DestinationAuthorization) Clone() *DestinationAuthorization {
	clone := &DestinationAuthorization{
		DestinationID:   d.DestinationID,
		DestinationName: d.DestinationName,
		BeamMode:        d.BeamMode,
	}

	if d.CWLimit != nil {
		limit := *d.CWLimit
		clone.CWLimit = &limit
	}
	if d.ExpirationDate != nil {
		expiration := *d.ExpirationDate
		clone.ExpirationDate = &expiration
	}
	if d.Comments != nil {
		comments := *d.Comments
		clone.Comments = &comments
	}

	return clone
}

// Revoke clears beam permission for the row and records the reason.
func (d *DestinationAuthorization) Revoke(comment string) {
	d.BeamMode = BeamModeNone
	d.CWLimit = nil
	d.Comments = &comment
}

// BeamDestination is a physical target location for beam. Inactive
// destinations are excluded from all expiration scans.
type BeamDestination struct {
	ID     int64
	Name   string
	Active bool
}
