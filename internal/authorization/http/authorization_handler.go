// Package http provides HTTP handlers for the authorization version store.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openaccel/beamauth/internal/authorization/http/dto"
	authUseCase "github.com/openaccel/beamauth/internal/authorization/usecase"
	"github.com/openaccel/beamauth/internal/httputil"
)

// AuthorizationHandler handles HTTP requests for the authorization version
// store. The store is read-only over HTTP; new versions are created only by
// the revocation engine.
type AuthorizationHandler struct {
	authorizationUseCase authUseCase.AuthorizationUseCase
	logger               *slog.Logger
}

// NewAuthorizationHandler creates a new authorization handler with required dependencies.
func NewAuthorizationHandler(
	useCase authUseCase.AuthorizationUseCase,
	logger *slog.Logger,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationUseCase: useCase,
		logger:               logger,
	}
}

// CurrentHandler returns the latest authorization version with its
// destination rows.
// GET /v1/authorizations/current
// Returns 404 when no version has been created yet.
func (h *AuthorizationHandler) CurrentHandler(c *gin.Context) {
	current, err := h.authorizationUseCase.Current(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthorizationToResponse(current))
}

// ListDestinationsHandler lists beam destinations.
// GET /v1/destinations?active=true
func (h *AuthorizationHandler) ListDestinationsHandler(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
		activeOnly = parsed
	}

	destinations, err := h.authorizationUseCase.ListDestinations(c.Request.Context(), activeOnly)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDestinationsToListResponse(destinations))
}
