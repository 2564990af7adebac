// Package usecase implements the verification registry operations.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	"github.com/openaccel/beamauth/internal/database"
	directoryUsecase "github.com/openaccel/beamauth/internal/directory/usecase"
	apperrors "github.com/openaccel/beamauth/internal/errors"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// DestinationRepository defines the beam destination lookup the registry
// needs when toggling a verification on.
type DestinationRepository interface {
	Get(ctx context.Context, id int64) (*authDomain.BeamDestination, error)
}

// RevocationEngine is the subset of the authorization revocation engine the
// registry invokes when a verification is downgraded or expires.
type RevocationEngine interface {
	ClearForVerificationDowngrade(ctx context.Context, destinationIDs []int64) error
	ClearForVerificationExpiration(ctx context.Context, destinationIDs []int64) error
}

// verificationUseCase implements VerificationUseCase.
type verificationUseCase struct {
	verificationRepo VerificationRepository
	controlRepo      ControlRepository
	historyRepo      HistoryRepository
	destinationRepo  DestinationRepository
	directory        directoryUsecase.DirectoryUseCase
	engine           RevocationEngine
	txManager        database.TxManager
	systemUsername   string
	now              func() time.Time
}

// NewVerificationUseCase creates a new VerificationUseCase. systemUsername
// names the staff account that signs scanner-driven demotions.
func NewVerificationUseCase(
	verificationRepo VerificationRepository,
	controlRepo ControlRepository,
	historyRepo HistoryRepository,
	destinationRepo DestinationRepository,
	directory directoryUsecase.DirectoryUseCase,
	engine RevocationEngine,
	txManager database.TxManager,
	systemUsername string,
) VerificationUseCase {
	return &verificationUseCase{
		verificationRepo: verificationRepo,
		controlRepo:      controlRepo,
		historyRepo:      historyRepo,
		destinationRepo:  destinationRepo,
		directory:        directory,
		engine:           engine,
		txManager:        txManager,
		systemUsername:   systemUsername,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// FindByDestination lists verifications at one destination ordered by control weight.
func (v *verificationUseCase) FindByDestination(
	ctx context.Context,
	destinationID int64,
) ([]*verificationDomain.ControlVerification, error) {
	return v.verificationRepo.ListByDestination(ctx, destinationID)
}

// Find returns the verification for one control at one destination.
func (v *verificationUseCase) Find(
	ctx context.Context,
	controlID int64,
	destinationID int64,
) (*verificationDomain.ControlVerification, error) {
	return v.verificationRepo.Find(ctx, controlID, destinationID)
}

// History lists a page of audit rows for one verification, newest first.
func (v *verificationUseCase) History(
	ctx context.Context,
	controlVerificationID int64,
	offset int,
	limit int,
) ([]*verificationDomain.VerificationHistory, error) {
	return v.historyRepo.ListByVerification(ctx, controlVerificationID, offset, limit)
}

// ListControls lists all credited controls ordered by weight.
func (v *verificationUseCase) ListControls(
	ctx context.Context,
) ([]*verificationDomain.CreditedControl, error) {
	return v.controlRepo.List(ctx)
}

// Toggle creates a Not Verified row for the pair when absent and deletes the
// existing row otherwise. Requires an administrator actor.
func (v *verificationUseCase) Toggle(
	ctx context.Context,
	controlID int64,
	destinationID int64,
	actorUsername string,
) error {
	actor, err := v.directory.Resolve(ctx, actorUsername)
	if err != nil {
		return err
	}
	if err := v.directory.CheckAdmin(actor); err != nil {
		return err
	}

	return v.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := v.verificationRepo.Find(ctx, controlID, destinationID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if existing != nil {
			return v.verificationRepo.Delete(ctx, existing.ID)
		}

		control, err := v.controlRepo.Get(ctx, controlID)
		if err != nil {
			return err
		}
		destination, err := v.destinationRepo.Get(ctx, destinationID)
		if err != nil {
			return err
		}

		verification := &verificationDomain.ControlVerification{
			CreditedControl: control,
			DestinationID:   destination.ID,
			DestinationName: destination.Name,
			Status:          verificationDomain.StatusNotVerified,
			ModifiedBy:      *actor,
			ModifiedDate:    v.now(),
		}

		return v.verificationRepo.Create(ctx, verification)
	})
}

// Edit applies the input fields to every listed verification, appends an
// audit row per verification, revokes beam permission for downgraded
// destinations in the same transaction, and returns the downgraded subset.
func (v *verificationUseCase) Edit(
	ctx context.Context,
	input *EditInput,
	actorUsername string,
) ([]*verificationDomain.ControlVerification, error) {
	actor, err := v.directory.Resolve(ctx, actorUsername)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput,
				"staff with username %s not found", actorUsername)
		}
		return nil, err
	}

	if input.VerifiedByUsername == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "verified by must not be empty")
	}

	verifier, err := v.directory.Resolve(ctx, input.VerifiedByUsername)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput,
				"verified by with username %s not found", input.VerifiedByUsername)
		}
		return nil, err
	}

	if !input.Status.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "verification status must not be empty")
	}
	if input.VerificationDate == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "verification date must not be empty")
	}
	if len(input.VerificationIDs) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
			"control verification ID list must not be empty")
	}
	if input.ExpirationDate != nil && input.ExpirationDate.Before(v.now()) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "expiration date cannot be in the past")
	}

	downgraded := make([]*verificationDomain.ControlVerification, 0)

	err = v.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, id := range input.VerificationIDs {
			verification, err := v.verificationRepo.Get(ctx, id)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNotFound) {
					return apperrors.Wrapf(apperrors.ErrInvalidInput,
						"control verification with ID %d not found", id)
				}
				return err
			}

			err = v.directory.CheckAdminOrLeader(
				ctx,
				actor,
				verification.CreditedControl.Group.LeaderWorkgroupID,
			)
			if err != nil {
				return err
			}

			isDowngrade := verificationDomain.IsDowngrade(verification.Status, input.Status)

			verification.Status = input.Status
			verification.VerificationDate = input.VerificationDate
			verification.VerifiedBy = verifier
			verification.ExpirationDate = input.ExpirationDate
			verification.Comments = input.Comments
			verification.ModifiedBy = *actor
			verification.ModifiedDate = v.now()

			if err := v.verificationRepo.Update(ctx, verification); err != nil {
				return err
			}
			if err := v.historyRepo.Create(ctx, verification.Snapshot()); err != nil {
				return err
			}

			if isDowngrade {
				downgraded = append(downgraded, verification)
			}
		}

		if len(downgraded) > 0 {
			return v.engine.ClearForVerificationDowngrade(ctx, destinationIDs(downgraded))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return downgraded, nil
}

// CheckForExpired lists expired verifications at active destinations.
func (v *verificationUseCase) CheckForExpired(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	return v.verificationRepo.ListExpired(ctx, v.now())
}

// CheckForVerifiedButExpired lists expired verifications still holding a
// Verified or Provisionally Verified status.
func (v *verificationUseCase) CheckForVerifiedButExpired(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	return v.verificationRepo.ListVerifiedButExpired(ctx, v.now())
}

// CheckForUpcomingExpirations lists verified rows expiring within the
// verification look-ahead window.
func (v *verificationUseCase) CheckForUpcomingExpirations(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	now := v.now()
	return v.verificationRepo.ListUpcomingExpirations(
		ctx,
		now,
		now.Add(verificationDomain.UpcomingVerificationWindow),
	)
}

// RevokeExpired demotes the given verifications to Not Verified under the
// system account, appends audit rows recording the prior expiration date,
// and revokes beam permission for the affected destinations. Runs in a
// single transaction.
func (v *verificationUseCase) RevokeExpired(
	ctx context.Context,
	expired []*verificationDomain.ControlVerification,
) error {
	if len(expired) == 0 {
		return nil
	}

	system, err := v.directory.Resolve(ctx, v.systemUsername)
	if err != nil {
		return apperrors.Wrapf(err, "failed to resolve system account %s", v.systemUsername)
	}

	now := v.now()
	comment := verificationDomain.ExpiredComment

	return v.txManager.WithTx(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(expired))
		for _, verification := range expired {
			ids = append(ids, verification.ID)
		}

		if err := v.verificationRepo.BulkRevoke(ctx, ids, system.ID, now); err != nil {
			return err
		}

		for _, verification := range expired {
			history := &verificationDomain.VerificationHistory{
				ControlVerificationID: verification.ID,
				Status:                verificationDomain.StatusNotVerified,
				VerificationDate:      &now,
				ExpirationDate:        verification.ExpirationDate,
				Comments:              &comment,
				ModifiedBy:            *system,
				ModifiedDate:          now,
			}
			if err := v.historyRepo.Create(ctx, history); err != nil {
				return err
			}
		}

		return v.engine.ClearForVerificationExpiration(ctx, destinationIDs(expired))
	})
}

func destinationIDs(verifications []*verificationDomain.ControlVerification) []int64 {
	seen := make(map[int64]struct{}, len(verifications))
	ids := make([]int64, 0, len(verifications))
	for _, verification := range verifications {
		if _, ok := seen[verification.DestinationID]; ok {
			continue
		}
		seen[verification.DestinationID] = struct{}{}
		ids = append(ids, verification.DestinationID)
	}
	return ids
}
