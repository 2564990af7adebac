package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// Revocation reason comments recorded on cleared destination rows.
const (
	verificationRevokedCommentFormat = "Permission automatically revoked due to" +
		" group credited control verification %s"
	authorizationRevokedComment = "Permission automatically revoked due to" +
		" director's authorization expiration"
)

// revocationEngine implements RevocationEngine over the version store.
//
// Two independent triggers (director's authorization expiration and credited
// control downgrade/expiration) can race to clear the same current version.
// The engine always re-reads the current version inside the caller's
// transaction and treats an empty destination list, or rows that are already
// None, as nothing to clear, so a stale retry is a safe no-op rather than a
// duplicate write. Write conflicts between concurrent cloners are left to the
// storage layer's transaction isolation.
type revocationEngine struct {
	authRepo AuthorizationRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewRevocationEngine creates a new RevocationEngine with the provided repository.
func NewRevocationEngine(authRepo AuthorizationRepository, logger *slog.Logger) RevocationEngine {
	return &revocationEngine{
		authRepo: authRepo,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ClearForVerificationDowngrade revokes destinations implicated by a credited
// control verification downgrade.
func (e *revocationEngine) ClearForVerificationDowngrade(
	ctx context.Context,
	destinationIDs []int64,
) error {
	comment := fmt.Sprintf(verificationRevokedCommentFormat, "downgrade")
	return e.clear(ctx, matchDestinationIDs(destinationIDs), comment)
}

// ClearForVerificationExpiration revokes destinations implicated by a
// credited control verification expiration.
func (e *revocationEngine) ClearForVerificationExpiration(
	ctx context.Context,
	destinationIDs []int64,
) error {
	comment := fmt.Sprintf(verificationRevokedCommentFormat, "expiration")
	return e.clear(ctx, matchDestinationIDs(destinationIDs), comment)
}

// ClearForExpiredAuthorizations revokes destinations whose director's
// authorization has itself expired.
func (e *revocationEngine) ClearForExpiredAuthorizations(
	ctx context.Context,
	expired []*authDomain.DestinationAuthorization,
) error {
	ids := make([]int64, 0, len(expired))
	for _, dest := range expired {
		ids = append(ids, dest.DestinationID)
	}

	return e.clear(ctx, matchDestinationIDs(ids), authorizationRevokedComment)
}

// clear executes the shared clone-forward algorithm: load the current
// version, clone it, revoke every matched row that still grants beam, and
// persist the clone only when at least one row changed.
func (e *revocationEngine) clear(
	ctx context.Context,
	match func(*authDomain.DestinationAuthorization) bool,
	comment string,
) error {
	current, err := e.authRepo.FindCurrent(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			e.logger.Warn("no current authorization version, nothing to clear")
			return nil
		}
		return apperrors.Wrap(err, "failed to load current authorization")
	}

	// An empty destination list means a concurrent trigger already produced a
	// newer, already-cleared version. Warn so an unexpectedly empty permission
	// set stays visible, then skip.
	if len(current.Destinations) == 0 {
		e.logger.Warn("current authorization has no destination rows, nothing to clear",
			slog.Int64("authorization_id", current.ID),
		)
		return nil
	}

	clone := current.CloneForward(e.now())

	atLeastOne := false
	for i, dest := range current.Destinations {
		if dest.BeamMode == authDomain.BeamModeNone {
			// Already revoked; leave the clone row as-is.
			continue
		}

		if match(dest) {
			clone.Destinations[i].Revoke(comment)
			atLeastOne = true
		}
	}

	// No new version is created when nothing changed.
	if !atLeastOne {
		return nil
	}

	if err := e.authRepo.CreateVersion(ctx, clone); err != nil {
		return apperrors.Wrap(err, "failed to persist revoked authorization version")
	}

	e.logger.Info("director permission revoked",
		slog.Int64("previous_authorization_id", current.ID),
		slog.Int64("authorization_id", clone.ID),
		slog.String("reason", comment),
	)

	return nil
}

// matchDestinationIDs builds a predicate matching rows whose destination
// appears in the given ID set.
func matchDestinationIDs(ids []int64) func(*authDomain.DestinationAuthorization) bool {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return func(dest *authDomain.DestinationAuthorization) bool {
		_, ok := set[dest.DestinationID]
		return ok
	}
}
