package usecase

import (
	"context"
	"time"

	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// VerificationRepository defines verification registry persistence operations.
type VerificationRepository interface {
	Get(ctx context.Context, id int64) (*verificationDomain.ControlVerification, error)
	Find(
		ctx context.Context,
		controlID int64,
		destinationID int64,
	) (*verificationDomain.ControlVerification, error)
	ListByDestination(
		ctx context.Context,
		destinationID int64,
	) ([]*verificationDomain.ControlVerification, error)
	ListExpired(ctx context.Context, now time.Time) ([]*verificationDomain.ControlVerification, error)
	ListVerifiedButExpired(
		ctx context.Context,
		now time.Time,
	) ([]*verificationDomain.ControlVerification, error)
	ListUpcomingExpirations(
		ctx context.Context,
		now time.Time,
		deadline time.Time,
	) ([]*verificationDomain.ControlVerification, error)
	Create(ctx context.Context, verification *verificationDomain.ControlVerification) error
	Update(ctx context.Context, verification *verificationDomain.ControlVerification) error
	Delete(ctx context.Context, id int64) error
	BulkRevoke(ctx context.Context, ids []int64, modifiedBy int64, modifiedDate time.Time) error
}

// ControlRepository defines credited control lookup operations.
type ControlRepository interface {
	Get(ctx context.Context, id int64) (*verificationDomain.CreditedControl, error)
	List(ctx context.Context) ([]*verificationDomain.CreditedControl, error)
}

// HistoryRepository defines verification audit log operations.
type HistoryRepository interface {
	Create(ctx context.Context, history *verificationDomain.VerificationHistory) error
	ListByVerification(
		ctx context.Context,
		controlVerificationID int64,
		offset int,
		limit int,
	) ([]*verificationDomain.VerificationHistory, error)
}

// EditInput carries the fields applied to a batch of verifications in one
// Edit call.
type EditInput struct {
	VerificationIDs    []int64
	Status             verificationDomain.Status
	VerificationDate   *time.Time
	VerifiedByUsername string
	ExpirationDate     *time.Time
	Comments           *string
}

// VerificationUseCase exposes the verification registry operations.
type VerificationUseCase interface {
	// FindByDestination lists verifications at one destination ordered by
	// control weight.
	FindByDestination(
		ctx context.Context,
		destinationID int64,
	) ([]*verificationDomain.ControlVerification, error)

	// Find returns the verification for one control at one destination.
	Find(
		ctx context.Context,
		controlID int64,
		destinationID int64,
	) (*verificationDomain.ControlVerification, error)

	// History lists a page of audit rows for one verification, newest first.
	History(
		ctx context.Context,
		controlVerificationID int64,
		offset int,
		limit int,
	) ([]*verificationDomain.VerificationHistory, error)

	// ListControls lists all credited controls ordered by weight.
	ListControls(ctx context.Context) ([]*verificationDomain.CreditedControl, error)

	// Toggle creates a Not Verified row for the pair when absent and deletes
	// the existing row otherwise. Requires an administrator actor.
	Toggle(ctx context.Context, controlID, destinationID int64, actorUsername string) error

	// Edit applies the input fields to every listed verification, appends an
	// audit row per verification, revokes beam permission for downgraded
	// destinations in the same transaction, and returns the downgraded
	// subset.
	Edit(
		ctx context.Context,
		input *EditInput,
		actorUsername string,
	) ([]*verificationDomain.ControlVerification, error)

	// CheckForExpired lists expired verifications at active destinations.
	CheckForExpired(ctx context.Context) ([]*verificationDomain.ControlVerification, error)

	// CheckForVerifiedButExpired lists expired verifications still holding a
	// Verified or Provisionally Verified status.
	CheckForVerifiedButExpired(ctx context.Context) ([]*verificationDomain.ControlVerification, error)

	// CheckForUpcomingExpirations lists verified rows expiring within the
	// verification look-ahead window.
	CheckForUpcomingExpirations(ctx context.Context) ([]*verificationDomain.ControlVerification, error)

	// RevokeExpired demotes the given verifications to Not Verified under the
	// system account, appends audit rows, and revokes beam permission for the
	// affected destinations. Runs in a single transaction.
	RevokeExpired(ctx context.Context, expired []*verificationDomain.ControlVerification) error
}
