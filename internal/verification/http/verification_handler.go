// Package http provides HTTP handlers for the verification registry.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openaccel/beamauth/internal/httputil"
	customValidation "github.com/openaccel/beamauth/internal/validation"
	verificationDomain "github.com/openaccel/beamauth/internal/verification/domain"
	"github.com/openaccel/beamauth/internal/verification/http/dto"
	verificationUseCase "github.com/openaccel/beamauth/internal/verification/usecase"
)

// DowngradeNotifier announces verification downgrades after a successful
// edit. Delivery is best-effort and runs outside the edit transaction.
type DowngradeNotifier interface {
	NotifyDowngraded(
		ctx context.Context,
		downgraded []*verificationDomain.ControlVerification,
		actorUsername string,
	)
}

// VerificationHandler handles HTTP requests for the verification registry.
type VerificationHandler struct {
	verificationUseCase verificationUseCase.VerificationUseCase
	notifier            DowngradeNotifier
	logger              *slog.Logger
}

// NewVerificationHandler creates a new verification handler with required dependencies.
func NewVerificationHandler(
	useCase verificationUseCase.VerificationUseCase,
	notifier DowngradeNotifier,
	logger *slog.Logger,
) *VerificationHandler {
	return &VerificationHandler{
		verificationUseCase: useCase,
		notifier:            notifier,
		logger:              logger,
	}
}

// ListByDestinationHandler lists verifications at one destination ordered by
// control weight.
// GET /v1/destinations/:id/verifications
func (h *VerificationHandler) ListByDestinationHandler(c *gin.Context) {
	destinationID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	verifications, err := h.verificationUseCase.FindByDestination(c.Request.Context(), destinationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationsToListResponse(verifications))
}

// FindHandler returns the verification for one control at one destination.
// GET /v1/verifications?control_id=N&destination_id=M
func (h *VerificationHandler) FindHandler(c *gin.Context) {
	controlID, err := parseIDQuery(c, "control_id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	destinationID, err := parseIDQuery(c, "destination_id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	verification, err := h.verificationUseCase.Find(c.Request.Context(), controlID, destinationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationToResponse(verification))
}

// HistoryHandler lists a page of audit rows for one verification, newest
// first.
// GET /v1/verifications/:id/history
func (h *VerificationHandler) HistoryHandler(c *gin.Context) {
	verificationID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	history, err := h.verificationUseCase.History(c.Request.Context(), verificationID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoryToListResponse(history))
}

// ListExpiredHandler lists verifications at active destinations whose
// expiration date has passed, whatever their status.
// GET /v1/verifications/expired
func (h *VerificationHandler) ListExpiredHandler(c *gin.Context) {
	verifications, err := h.verificationUseCase.CheckForExpired(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationsToListResponse(verifications))
}

// ListControlsHandler lists all credited controls ordered by weight.
// GET /v1/controls
func (h *VerificationHandler) ListControlsHandler(c *gin.Context) {
	controls, err := h.verificationUseCase.ListControls(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapControlsToListResponse(controls))
}

// ToggleHandler creates a Not Verified row for the (control, destination)
// pair when absent and deletes the existing row otherwise.
// POST /v1/verifications/toggle - Requires an administrator actor.
// Returns 204 No Content.
func (h *VerificationHandler) ToggleHandler(c *gin.Context) {
	actor, err := httputil.ActorUsername(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.ToggleVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err = h.verificationUseCase.Toggle(c.Request.Context(), req.ControlID, req.DestinationID, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// EditHandler applies the request fields to a batch of verifications and
// returns the downgraded subset. Downgrade notifications are dispatched
// after the edit commits.
// PUT /v1/verifications - Requires an admin-or-group-leader actor per row.
func (h *VerificationHandler) EditHandler(c *gin.Context) {
	actor, err := httputil.ActorUsername(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.EditVerificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	downgraded, err := h.verificationUseCase.Edit(c.Request.Context(), req.ToEditInput(), actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if len(downgraded) > 0 && h.notifier != nil {
		h.notifier.NotifyDowngraded(c.Request.Context(), downgraded, actor)
	}

	c.JSON(http.StatusOK, dto.MapVerificationsToListResponse(downgraded))
}

// parseIDParam parses a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	return parseID(c.Param(name), name)
}

// parseIDQuery parses a positive integer query parameter.
func parseIDQuery(c *gin.Context, name string) (int64, error) {
	return parseID(c.Query(name), name)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return id, nil
}
