package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	"github.com/openaccel/beamauth/internal/authorization/http/dto"
)

// mockAuthorizationUseCase is a mock implementation of AuthorizationUseCase for testing.
type mockAuthorizationUseCase struct {
	mock.Mock
}

func (m *mockAuthorizationUseCase) Current(ctx context.Context) (*authDomain.Authorization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Authorization), args.Error(1)
}

func (m *mockAuthorizationUseCase) CheckForAuthorizedButExpired(
	ctx context.Context,
	current *authDomain.Authorization,
) ([]*authDomain.DestinationAuthorization, error) {
	args := m.Called(ctx, current)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.DestinationAuthorization), args.Error(1)
}

func (m *mockAuthorizationUseCase) CheckForUpcomingExpirations(
	current *authDomain.Authorization,
) []*authDomain.DestinationAuthorization {
	args := m.Called(current)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*authDomain.DestinationAuthorization)
}

func (m *mockAuthorizationUseCase) ListDestinations(
	ctx context.Context,
	activeOnly bool,
) ([]*authDomain.BeamDestination, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.BeamDestination), args.Error(1)
}

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*AuthorizationHandler, *mockAuthorizationUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mockAuthorizationUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewAuthorizationHandler(mockUseCase, logger)

	return handler, mockUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestAuthorizationHandler_CurrentHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		expiration := createdAt.Add(30 * 24 * time.Hour)
		limit := 180.0

		current := &authDomain.Authorization{
			ID:        10,
			CreatedAt: createdAt,
			Destinations: []*authDomain.DestinationAuthorization{
				{
					DestinationID:   1,
					AuthorizationID: 10,
					DestinationName: "Hall A",
					BeamMode:        "CW",
					CWLimit:         &limit,
					ExpirationDate:  &expiration,
				},
				{
					DestinationID:   2,
					AuthorizationID: 10,
					DestinationName: "Hall B",
					BeamMode:        authDomain.BeamModeNone,
				},
			},
		}

		mockUseCase.On("Current", mock.Anything).Return(current, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/authorizations/current", nil)

		handler.CurrentHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.AuthorizationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(10), response.ID)
		require.Len(t, response.Destinations, 2)
		assert.Equal(t, "CW", response.Destinations[0].BeamMode)
		require.NotNil(t, response.Destinations[0].CWLimit)
		assert.InDelta(t, 180.0, *response.Destinations[0].CWLimit, 0.001)
		assert.Equal(t, authDomain.BeamModeNone, response.Destinations[1].BeamMode)
		assert.Nil(t, response.Destinations[1].CWLimit)
	})

	t.Run("Error_NoVersionYet", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Current", mock.Anything).
			Return(nil, authDomain.ErrAuthorizationNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/authorizations/current", nil)

		handler.CurrentHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthorizationHandler_ListDestinationsHandler(t *testing.T) {
	t.Run("Success_ActiveOnly", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		destinations := []*authDomain.BeamDestination{
			{ID: 1, Name: "Hall A", Active: true},
			{ID: 3, Name: "Hall C", Active: true},
		}

		mockUseCase.On("ListDestinations", mock.Anything, true).
			Return(destinations, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/destinations?active=true", nil)

		handler.ListDestinationsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListBeamDestinationsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Destinations, 2)
		assert.Equal(t, "Hall C", response.Destinations[1].Name)
	})

	t.Run("Success_DefaultIncludesInactive", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("ListDestinations", mock.Anything, false).
			Return([]*authDomain.BeamDestination{}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/destinations", nil)

		handler.ListDestinationsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidActiveFlag", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/destinations?active=banana", nil)

		handler.ListDestinationsHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
