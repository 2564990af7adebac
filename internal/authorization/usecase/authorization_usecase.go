// Package usecase implements the authorization version store operations and
// the cascading revocation engine.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// authorizationUseCase implements AuthorizationUseCase.
type authorizationUseCase struct {
	authRepo        AuthorizationRepository
	destinationRepo BeamDestinationRepository
	now             func() time.Time
}

// NewAuthorizationUseCase creates a new AuthorizationUseCase with the provided repositories.
func NewAuthorizationUseCase(
	authRepo AuthorizationRepository,
	destinationRepo BeamDestinationRepository,
) AuthorizationUseCase {
	return &authorizationUseCase{
		authRepo:        authRepo,
		destinationRepo: destinationRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the latest authorization version with its destination rows.
func (a *authorizationUseCase) Current(ctx context.Context) (*authDomain.Authorization, error) {
	current, err := a.authRepo.FindCurrent(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load current authorization")
	}

	return current, nil
}

// CheckForAuthorizedButExpired returns destination rows of the current
// version whose permission has expired, ordered by destination ID.
func (a *authorizationUseCase) CheckForAuthorizedButExpired(
	ctx context.Context,
	current *authDomain.Authorization,
) ([]*authDomain.DestinationAuthorization, error) {
	expired, err := a.authRepo.ListExpired(ctx, current.ID, a.now())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to check for expired authorizations")
	}

	return expired, nil
}

// CheckForUpcomingExpirations returns destination rows of the current version
// expiring within the authorization look-ahead window. Computed over the
// already-loaded version, so no query is needed.
func (a *authorizationUseCase) CheckForUpcomingExpirations(
	current *authDomain.Authorization,
) []*authDomain.DestinationAuthorization {
	now := a.now()
	deadline := now.Add(authDomain.UpcomingAuthorizationWindow)

	upcoming := make([]*authDomain.DestinationAuthorization, 0)
	for _, dest := range current.Destinations {
		if dest.BeamMode == authDomain.BeamModeNone || dest.ExpirationDate == nil {
			continue
		}
		if dest.ExpirationDate.After(now) && dest.ExpirationDate.Before(deadline) {
			upcoming = append(upcoming, dest)
		}
	}

	return upcoming
}

// ListDestinations lists beam destinations, optionally active only.
func (a *authorizationUseCase) ListDestinations(
	ctx context.Context,
	activeOnly bool,
) ([]*authDomain.BeamDestination, error) {
	destinations, err := a.destinationRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list beam destinations")
	}

	return destinations, nil
}
