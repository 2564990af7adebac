package usecase

import (
	"context"
	"time"

	"github.com/openaccel/beamauth/internal/metrics"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// verificationUseCaseWithMetrics decorates VerificationUseCase with metrics
// instrumentation.
type verificationUseCaseWithMetrics struct {
	next    VerificationUseCase
	metrics metrics.BusinessMetrics
}

// NewVerificationUseCaseWithMetrics wraps a VerificationUseCase with metrics recording.
func NewVerificationUseCaseWithMetrics(
	useCase VerificationUseCase,
	m metrics.BusinessMetrics,
) VerificationUseCase {
	return &verificationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *verificationUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "verification", operation, status)
	v.metrics.RecordDuration(ctx, "verification", operation, time.Since(start), status)
}

func (v *verificationUseCaseWithMetrics) FindByDestination(
	ctx context.Context,
	destinationID int64,
) ([]*verificationDomain.ControlVerification, error) {
	return v.next.FindByDestination(ctx, destinationID)
}

func (v *verificationUseCaseWithMetrics) Find(
	ctx context.Context,
	controlID int64,
	destinationID int64,
) (*verificationDomain.ControlVerification, error) {
	return v.next.Find(ctx, controlID, destinationID)
}

func (v *verificationUseCaseWithMetrics) History(
	ctx context.Context,
	controlVerificationID int64,
	offset int,
	limit int,
) ([]*verificationDomain.VerificationHistory, error) {
	return v.next.History(ctx, controlVerificationID, offset, limit)
}

func (v *verificationUseCaseWithMetrics) ListControls(
	ctx context.Context,
) ([]*verificationDomain.CreditedControl, error) {
	return v.next.ListControls(ctx)
}

// Toggle records metrics for verification toggle operations.
func (v *verificationUseCaseWithMetrics) Toggle(
	ctx context.Context,
	controlID int64,
	destinationID int64,
	actorUsername string,
) error {
	start := time.Now()
	err := v.next.Toggle(ctx, controlID, destinationID, actorUsername)
	v.record(ctx, "toggle", start, err)
	return err
}

// Edit records metrics for verification edit operations.
func (v *verificationUseCaseWithMetrics) Edit(
	ctx context.Context,
	input *EditInput,
	actorUsername string,
) ([]*verificationDomain.ControlVerification, error) {
	start := time.Now()
	downgraded, err := v.next.Edit(ctx, input, actorUsername)
	v.record(ctx, "edit", start, err)
	return downgraded, err
}

func (v *verificationUseCaseWithMetrics) CheckForExpired(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	return v.next.CheckForExpired(ctx)
}

func (v *verificationUseCaseWithMetrics) CheckForVerifiedButExpired(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	return v.next.CheckForVerifiedButExpired(ctx)
}

func (v *verificationUseCaseWithMetrics) CheckForUpcomingExpirations(
	ctx context.Context,
) ([]*verificationDomain.ControlVerification, error) {
	return v.next.CheckForUpcomingExpirations(ctx)
}

// RevokeExpired records metrics for scanner-driven demotions.
func (v *verificationUseCaseWithMetrics) RevokeExpired(
	ctx context.Context,
	expired []*verificationDomain.ControlVerification,
) error {
	start := time.Now()
	err := v.next.RevokeExpired(ctx, expired)
	v.record(ctx, "revoke_expired", start, err)
	return err
}
