// Package scanner runs the periodic expiration check that demotes expired
// verifications, revokes expired authorizations, and hands the results to
// the notification dispatcher.
package scanner

import (
	"context"
	"log/slog"
	"time"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	"github.com/openaccel/beamauth/internal/database"
	apperrors "github.com/openaccel/beamauth/internal/errors"
	"github.com/openaccel/beamauth/internal/notification"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// Config holds scanner configuration.
type Config struct {
	Interval        time.Duration
	IncludeUpcoming bool
}

// AuthorizationChecker is the subset of the authorization use case the
// scanner consumes.
type AuthorizationChecker interface {
	Current(ctx context.Context) (*authDomain.Authorization, error)
	CheckForAuthorizedButExpired(
		ctx context.Context,
		current *authDomain.Authorization,
	) ([]*authDomain.DestinationAuthorization, error)
	CheckForUpcomingExpirations(
		current *authDomain.Authorization,
	) []*authDomain.DestinationAuthorization
}

// VerificationChecker is the subset of the verification use case the scanner
// consumes.
type VerificationChecker interface {
	CheckForVerifiedButExpired(ctx context.Context) ([]*verificationDomain.ControlVerification, error)
	CheckForUpcomingExpirations(ctx context.Context) ([]*verificationDomain.ControlVerification, error)
	RevokeExpired(ctx context.Context, expired []*verificationDomain.ControlVerification) error
}

// AuthorizationRevoker revokes beam permission for expired authorization rows.
type AuthorizationRevoker interface {
	ClearForExpiredAuthorizations(
		ctx context.Context,
		expired []*authDomain.DestinationAuthorization,
	) error
}

// ExpirationNotifier receives the completed report. Delivery is best-effort.
type ExpirationNotifier interface {
	NotifyExpirations(ctx context.Context, report *notification.ExpirationReport)
}

// Scanner performs expiration checks, either one-shot or on a ticker.
type Scanner struct {
	config        Config
	authorization AuthorizationChecker
	verification  VerificationChecker
	engine        AuthorizationRevoker
	notifier      ExpirationNotifier
	txManager     database.TxManager
	logger        *slog.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(
	config Config,
	authorization AuthorizationChecker,
	verification VerificationChecker,
	engine AuthorizationRevoker,
	notifier ExpirationNotifier,
	txManager database.TxManager,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		config:        config,
		authorization: authorization,
		verification:  verification,
		engine:        engine,
		notifier:      notifier,
		txManager:     txManager,
		logger:        logger,
	}
}

// Start runs the expiration check loop until the context is canceled.
func (s *Scanner) Start(ctx context.Context) error {
	s.logger.Info("starting expiration scanner",
		slog.Duration("interval", s.config.Interval),
		slog.Bool("include_upcoming", s.config.IncludeUpcoming),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping expiration scanner")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.PerformExpirationCheck(ctx, s.config.IncludeUpcoming); err != nil {
				s.logger.Error("expiration check failed", slog.Any("error", err))
			}
		}
	}
}

// PerformExpirationCheck revokes expired authorizations, demotes expired
// verifications, optionally collects the two upcoming sets, and hands the
// report to the dispatcher. Returns the report so one-shot callers can
// display it.
func (s *Scanner) PerformExpirationCheck(
	ctx context.Context,
	includeUpcoming bool,
) (*notification.ExpirationReport, error) {
	report := &notification.ExpirationReport{}

	current, err := s.authorization.Current(ctx)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if current != nil {
		expired, err := s.authorization.CheckForAuthorizedButExpired(ctx, current)
		if err != nil {
			return nil, err
		}
		report.ExpiredAuthorizations = expired

		if len(expired) > 0 {
			s.logger.Info("revoking expired authorizations", slog.Int("count", len(expired)))

			err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
				return s.engine.ClearForExpiredAuthorizations(ctx, expired)
			})
			if err != nil {
				return nil, err
			}
		}
	}

	expiredVerifications, err := s.verification.CheckForVerifiedButExpired(ctx)
	if err != nil {
		return nil, err
	}
	report.ExpiredVerifications = expiredVerifications

	if len(expiredVerifications) > 0 {
		s.logger.Info("revoking expired verifications",
			slog.Int("count", len(expiredVerifications)))

		if err := s.verification.RevokeExpired(ctx, expiredVerifications); err != nil {
			return nil, err
		}
	}

	if includeUpcoming {
		upcomingVerifications, err := s.verification.CheckForUpcomingExpirations(ctx)
		if err != nil {
			return nil, err
		}
		report.UpcomingVerificationExpirations = upcomingVerifications

		if current != nil {
			report.UpcomingAuthorizationExpirations = s.authorization.CheckForUpcomingExpirations(current)
		}
	}

	s.notifier.NotifyExpirations(ctx, report)

	return report, nil
}
