package httputil

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// ActorHeader carries the authenticated username set by the fronting proxy.
// Authentication itself happens upstream; the API trusts this header.
const ActorHeader = "X-Remote-User"

// ActorUsername extracts the acting username from the request headers.
// Returns ErrUnauthorized when the header is missing or blank.
func ActorUsername(c *gin.Context) (string, error) {
	username := strings.TrimSpace(c.GetHeader(ActorHeader))
	if username == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "missing X-Remote-User header")
	}

	return username, nil
}
