package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	directoryUsecase "github.com/openaccel/beamauth/internal/directory/usecase"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
)

// ExpirationReport collects the four result sets of one expiration check.
type ExpirationReport struct {
	ExpiredAuthorizations            []*authDomain.DestinationAuthorization
	ExpiredVerifications             []*verificationDomain.ControlVerification
	UpcomingAuthorizationExpirations []*authDomain.DestinationAuthorization
	UpcomingVerificationExpirations  []*verificationDomain.ControlVerification
}

// Empty reports whether every set is empty.
func (r *ExpirationReport) Empty() bool {
	return len(r.ExpiredAuthorizations) == 0 &&
		len(r.ExpiredVerifications) == 0 &&
		len(r.UpcomingAuthorizationExpirations) == 0 &&
		len(r.UpcomingVerificationExpirations) == 0
}

func (r *ExpirationReport) hasExpired() bool {
	return len(r.ExpiredAuthorizations) > 0 || len(r.ExpiredVerifications) > 0
}

func (r *ExpirationReport) hasVerifications() bool {
	return len(r.ExpiredVerifications) > 0 || len(r.UpcomingVerificationExpirations) > 0
}

// Dispatcher routes expiration and downgrade notices. Delivery failures are
// logged and never propagated, so a broken relay cannot abort a revocation.
type Dispatcher struct {
	config    Config
	email     EmailSender
	logbook   LogbookClient
	directory directoryUsecase.DirectoryUseCase
	logger    *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	config Config,
	email EmailSender,
	logbook LogbookClient,
	directory directoryUsecase.DirectoryUseCase,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:    config,
		email:     email,
		logbook:   logbook,
		directory: directory,
		logger:    logger,
	}
}

// NotifyExpirations fans the report out to admins, operations, and group
// leaders. Admins always receive the full report; ops only when something
// has expired; group leaders only for verification sets owned by their
// workgroup.
func (d *Dispatcher) NotifyExpirations(ctx context.Context, report *ExpirationReport) {
	if report.Empty() {
		d.logger.Debug("nothing to notify about")
		return
	}

	d.notifyAdmins(ctx, report)

	if report.hasExpired() {
		d.notifyOps(ctx, report)
	}

	if report.hasVerifications() {
		if d.config.NotifyGroups {
			d.notifyGroups(ctx, report)
		} else {
			d.logger.Info("group leader notifications disabled")
		}
	}
}

func (d *Dispatcher) notifyAdmins(ctx context.Context, report *ExpirationReport) {
	if len(d.config.AdminRecipients) == 0 {
		return
	}

	body := ExpirationMessageBody(
		d.config.ProxyHostname,
		report.ExpiredAuthorizations,
		report.ExpiredVerifications,
		report.UpcomingAuthorizationExpirations,
		report.UpcomingVerificationExpirations,
	)

	err := d.email.Send(ctx, d.config.AdminRecipients, d.config.UpcomingExpirationSubject, body)
	if err != nil {
		d.logger.Warn("unable to notify admins", "error", err)
	}
}

func (d *Dispatcher) notifyOps(ctx context.Context, report *ExpirationReport) {
	if len(d.config.OpsRecipients) == 0 {
		return
	}

	body := ExpirationMessageBody(
		d.config.ProxyHostname,
		report.ExpiredAuthorizations,
		report.ExpiredVerifications,
		nil,
		nil,
	)

	err := d.email.Send(ctx, d.config.OpsRecipients, d.config.ExpiredSubject, body)
	if err != nil {
		d.logger.Warn("unable to notify ops", "error", err)
	}
}

// notifyGroups sends one message per leader workgroup containing only the
// verifications its group owns.
func (d *Dispatcher) notifyGroups(ctx context.Context, report *ExpirationReport) {
	expiredByWorkgroup := groupByLeaderWorkgroup(report.ExpiredVerifications)
	upcomingByWorkgroup := groupByLeaderWorkgroup(report.UpcomingVerificationExpirations)

	workgroupIDs := make(map[int64]struct{})
	for id := range expiredByWorkgroup {
		workgroupIDs[id] = struct{}{}
	}
	for id := range upcomingByWorkgroup {
		workgroupIDs[id] = struct{}{}
	}

	sorted := make([]int64, 0, len(workgroupIDs))
	for id := range workgroupIDs {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, workgroupID := range sorted {
		leaders, err := d.directory.WorkgroupLeaders(ctx, workgroupID)
		if err != nil {
			d.logger.Warn("unable to resolve workgroup leaders",
				"workgroup_id", workgroupID, "error", err)
			continue
		}

		addresses := make([]string, 0, len(leaders))
		for _, leader := range leaders {
			if leader.Username != "" {
				addresses = append(addresses,
					fmt.Sprintf("%s@%s", leader.Username, d.config.EmailDomain))
			}
		}
		if len(addresses) == 0 {
			d.logger.Warn("workgroup has no leaders to notify", "workgroup_id", workgroupID)
			continue
		}

		body := ExpirationMessageBody(
			d.config.ProxyHostname,
			nil,
			expiredByWorkgroup[workgroupID],
			nil,
			upcomingByWorkgroup[workgroupID],
		)

		err = d.email.Send(ctx, addresses, d.config.UpcomingExpirationSubject, body)
		if err != nil {
			d.logger.Warn("unable to notify workgroup leaders",
				"workgroup_id", workgroupID, "error", err)
		}
	}
}

// NotifyDowngraded emails the downgrade recipients and files an incident log
// entry. Each channel fails independently.
func (d *Dispatcher) NotifyDowngraded(
	ctx context.Context,
	downgraded []*verificationDomain.ControlVerification,
	actorUsername string,
) {
	if len(downgraded) == 0 {
		return
	}

	body := DowngradeMessageBody(d.config.ProxyHostname, downgraded)

	if len(d.config.DowngradedRecipients) > 0 {
		err := d.email.Send(ctx, d.config.DowngradedRecipients, d.config.DowngradedSubject, body)
		if err != nil {
			d.logger.Warn("unable to send downgrade email", "error", err)
		}
	}

	if d.logbook == nil {
		return
	}

	logID, err := d.logbook.Submit(ctx, actorUsername, d.config.DowngradedSubject, body)
	if err != nil {
		d.logger.Warn("unable to submit downgrade logbook entry", "error", err)
		return
	}

	d.logger.Info("downgrade logbook entry filed", "log_id", logID)
}

func groupByLeaderWorkgroup(
	verifications []*verificationDomain.ControlVerification,
) map[int64][]*verificationDomain.ControlVerification {
	grouped := make(map[int64][]*verificationDomain.ControlVerification)
	for _, verification := range verifications {
		workgroupID := verification.CreditedControl.Group.LeaderWorkgroupID
		grouped[workgroupID] = append(grouped[workgroupID], verification)
	}
	return grouped
}
