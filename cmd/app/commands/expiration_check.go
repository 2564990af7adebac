package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openaccel/beamauth/internal/app"
	"github.com/openaccel/beamauth/internal/config"
	"github.com/openaccel/beamauth/internal/notification"
)

// RunExpirationCheck performs a single expiration scan outside the worker
// loop, revoking expired authorizations and verifications and dispatching
// notifications. Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunExpirationCheck(ctx context.Context, includeUpcoming bool, format string, in IOTuple) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("running expiration check",
		slog.Bool("include_upcoming", includeUpcoming),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get the expiration scanner from container
	expirationScanner, err := container.Scanner()
	if err != nil {
		return fmt.Errorf("failed to initialize expiration scanner: %w", err)
	}

	report, err := expirationScanner.PerformExpirationCheck(ctx, includeUpcoming)
	if err != nil {
		return fmt.Errorf("failed to perform expiration check: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputExpirationCheckJSON(in, report); err != nil {
			return err
		}
	} else {
		outputExpirationCheckText(in, report)
	}

	logger.Info("expiration check completed",
		slog.Int("expired_authorizations", len(report.ExpiredAuthorizations)),
		slog.Int("expired_verifications", len(report.ExpiredVerifications)),
	)

	return nil
}

// outputExpirationCheckText outputs the report in human-readable text format.
func outputExpirationCheckText(in IOTuple, report *notification.ExpirationReport) {
	fmt.Fprintf(in.Writer, "Expired authorizations: %d\n", len(report.ExpiredAuthorizations))
	fmt.Fprintf(in.Writer, "Expired verifications: %d\n", len(report.ExpiredVerifications))
	fmt.Fprintf(in.Writer, "Upcoming authorization expirations: %d\n", len(report.UpcomingAuthorizationExpirations))
	fmt.Fprintf(in.Writer, "Upcoming verification expirations: %d\n", len(report.UpcomingVerificationExpirations))
}

// outputExpirationCheckJSON outputs the report counts in JSON format for
// machine consumption.
func outputExpirationCheckJSON(in IOTuple, report *notification.ExpirationReport) error {
	result := map[string]interface{}{
		"expired_authorizations":             len(report.ExpiredAuthorizations),
		"expired_verifications":              len(report.ExpiredVerifications),
		"upcoming_authorization_expirations": len(report.UpcomingAuthorizationExpirations),
		"upcoming_verification_expirations":  len(report.UpcomingVerificationExpirations),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(in.Writer, string(jsonBytes))
	return nil
}
