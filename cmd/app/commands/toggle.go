package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openaccel/beamauth/internal/app"
	"github.com/openaccel/beamauth/internal/config"
)

// RunToggleVerification flips the verified/not-verified state of a single
// credited control at a beam destination, recording the given actor as the
// modifier. Intended for operational corrections from the command line.
//
// Requirements: Database must be migrated and accessible.
func RunToggleVerification(ctx context.Context, controlID, destinationID int64, actor string, in IOTuple) error {
	// Validate parameters
	if controlID <= 0 {
		return fmt.Errorf("control-id must be a positive number, got: %d", controlID)
	}
	if destinationID <= 0 {
		return fmt.Errorf("destination-id must be a positive number, got: %d", destinationID)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return fmt.Errorf("actor must not be empty")
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("toggling verification",
		slog.Int64("control_id", controlID),
		slog.Int64("destination_id", destinationID),
		slog.String("actor", actor),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get verification use case from container
	verificationUseCase, err := container.VerificationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize verification use case: %w", err)
	}

	if err := verificationUseCase.Toggle(ctx, controlID, destinationID, actor); err != nil {
		return fmt.Errorf("failed to toggle verification: %w", err)
	}

	fmt.Fprintf(in.Writer, "Toggled verification for control %d at destination %d\n", controlID, destinationID)

	logger.Info("verification toggled",
		slog.Int64("control_id", controlID),
		slog.Int64("destination_id", destinationID),
	)

	return nil
}
