package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// mockBeamDestinationRepository is a mock implementation of BeamDestinationRepository for testing.
type mockBeamDestinationRepository struct {
	mock.Mock
}

func (m *mockBeamDestinationRepository) Get(
	ctx context.Context,
	id int64,
) (*authDomain.BeamDestination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.BeamDestination), args.Error(1)
}

func (m *mockBeamDestinationRepository) List(
	ctx context.Context,
	activeOnly bool,
) ([]*authDomain.BeamDestination, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.BeamDestination), args.Error(1)
}

func TestAuthorizationUseCase_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		current := currentAuthorization()
		mockRepo.On("FindCurrent", ctx).Return(current, nil).Once()

		uc := NewAuthorizationUseCase(mockRepo, &mockBeamDestinationRepository{})

		got, err := uc.Current(ctx)

		require.NoError(t, err)
		assert.Equal(t, current, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		mockRepo.On("FindCurrent", ctx).
			Return(nil, authDomain.ErrAuthorizationNotFound).
			Once()

		uc := NewAuthorizationUseCase(mockRepo, &mockBeamDestinationRepository{})

		got, err := uc.Current(ctx)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestAuthorizationUseCase_CheckForAuthorizedButExpired(t *testing.T) {
	ctx := context.Background()
	current := currentAuthorization()

	mockRepo := &mockAuthorizationRepository{}
	mockRepo.On("ListExpired", ctx, current.ID, mock.AnythingOfType("time.Time")).
		Return([]*authDomain.DestinationAuthorization{current.Destinations[0]}, nil).
		Once()

	uc := NewAuthorizationUseCase(mockRepo, &mockBeamDestinationRepository{})

	expired, err := uc.CheckForAuthorizedButExpired(ctx, current)

	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].DestinationID)
	mockRepo.AssertExpectations(t)
}

func TestAuthorizationUseCase_CheckForUpcomingExpirations(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	uc := &authorizationUseCase{now: func() time.Time { return now }}

	ptr := func(t time.Time) *time.Time { return &t }

	current := &authDomain.Authorization{
		ID: 10,
		Destinations: []*authDomain.DestinationAuthorization{
			// Inside the three day window.
			{DestinationID: 1, BeamMode: "CW", ExpirationDate: ptr(now.Add(48 * time.Hour))},
			// Beyond the window.
			{DestinationID: 2, BeamMode: "CW", ExpirationDate: ptr(now.Add(96 * time.Hour))},
			// Already expired.
			{DestinationID: 3, BeamMode: "CW", ExpirationDate: ptr(now.Add(-time.Hour))},
			// Revoked rows never count, even with an expiration inside the window.
			{
				DestinationID:  4,
				BeamMode:       authDomain.BeamModeNone,
				ExpirationDate: ptr(now.Add(time.Hour)),
			},
			// No expiration set.
			{DestinationID: 5, BeamMode: "CW"},
		},
	}

	upcoming := uc.CheckForUpcomingExpirations(current)

	require.Len(t, upcoming, 1)
	assert.Equal(t, int64(1), upcoming[0].DestinationID)
}

func TestAuthorizationUseCase_ListDestinations(t *testing.T) {
	ctx := context.Background()

	mockDestRepo := &mockBeamDestinationRepository{}
	mockDestRepo.On("List", ctx, true).
		Return([]*authDomain.BeamDestination{
			{ID: 1, Name: "Hall A", Active: true},
			{ID: 2, Name: "Hall C", Active: true},
		}, nil).
		Once()

	uc := NewAuthorizationUseCase(&mockAuthorizationRepository{}, mockDestRepo)

	destinations, err := uc.ListDestinations(ctx, true)

	require.NoError(t, err)
	assert.Len(t, destinations, 2)
	mockDestRepo.AssertExpectations(t)
}
