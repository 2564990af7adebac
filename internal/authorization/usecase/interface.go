package usecase

import (
	"context"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
)

// AuthorizationRepository defines authorization version store operations.
type AuthorizationRepository interface {
	FindCurrent(ctx context.Context) (*authDomain.Authorization, error)
	CreateVersion(ctx context.Context, authorization *authDomain.Authorization) error
	ListExpired(
		ctx context.Context,
		authorizationID int64,
		now time.Time,
	) ([]*authDomain.DestinationAuthorization, error)
}

// BeamDestinationRepository defines beam destination lookup operations.
type BeamDestinationRepository interface {
	Get(ctx context.Context, id int64) (*authDomain.BeamDestination, error)
	List(ctx context.Context, activeOnly bool) ([]*authDomain.BeamDestination, error)
}

// AuthorizationUseCase exposes read operations over the version store.
type AuthorizationUseCase interface {
	// Current returns the latest authorization version with its destination rows.
	Current(ctx context.Context) (*authDomain.Authorization, error)

	// CheckForAuthorizedButExpired returns destination rows of the current
	// version whose permission has expired, ordered by destination ID.
	CheckForAuthorizedButExpired(
		ctx context.Context,
		current *authDomain.Authorization,
	) ([]*authDomain.DestinationAuthorization, error)

	// CheckForUpcomingExpirations returns destination rows of the current
	// version expiring within the authorization look-ahead window.
	CheckForUpcomingExpirations(
		current *authDomain.Authorization,
	) []*authDomain.DestinationAuthorization

	// ListDestinations lists beam destinations, optionally active only.
	ListDestinations(ctx context.Context, activeOnly bool) ([]*authDomain.BeamDestination, error)
}

// RevocationEngine clears director permission for destinations implicated by
// an expired or downgraded trigger. All entry points share one clone-forward
// algorithm and must be invoked inside the caller's transaction so the
// revocation commits or aborts atomically with the triggering writes.
type RevocationEngine interface {
	// ClearForVerificationDowngrade revokes destinations implicated by a
	// credited control verification downgrade.
	ClearForVerificationDowngrade(ctx context.Context, destinationIDs []int64) error

	// ClearForVerificationExpiration revokes destinations implicated by a
	// credited control verification expiration.
	ClearForVerificationExpiration(ctx context.Context, destinationIDs []int64) error

	// ClearForExpiredAuthorizations revokes destinations whose director's
	// authorization has itself expired.
	ClearForExpiredAuthorizations(
		ctx context.Context,
		expired []*authDomain.DestinationAuthorization,
	) error
}
