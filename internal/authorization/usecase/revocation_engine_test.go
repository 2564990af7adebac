package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/openaccel/beamauth/internal/authorization/domain"
)

// mockAuthorizationRepository is a mock implementation of AuthorizationRepository for testing.
type mockAuthorizationRepository struct {
	mock.Mock
}

func (m *mockAuthorizationRepository) FindCurrent(ctx context.Context) (*authDomain.Authorization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Authorization), args.Error(1)
}

func (m *mockAuthorizationRepository) CreateVersion(
	ctx context.Context,
	authorization *authDomain.Authorization,
) error {
	args := m.Called(ctx, authorization)
	return args.Error(0)
}

func (m *mockAuthorizationRepository) ListExpired(
	ctx context.Context,
	authorizationID int64,
	now time.Time,
) ([]*authDomain.DestinationAuthorization, error) {
	args := m.Called(ctx, authorizationID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.DestinationAuthorization), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func currentAuthorization() *authDomain.Authorization {
	limit := 180.0
	expiration := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	return &authDomain.Authorization{
		ID:        10,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
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
			{
				DestinationID:   3,
				AuthorizationID: 10,
				DestinationName: "Hall C",
				BeamMode:        "Tune",
			},
		},
	}
}

func TestRevocationEngine_ClearForVerificationDowngrade(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RevokesMatchedRows", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		current := currentAuthorization()
		mockRepo.On("FindCurrent", ctx).Return(current, nil).Once()

		var persisted *authDomain.Authorization
		mockRepo.On("CreateVersion", ctx, mock.AnythingOfType("*domain.Authorization")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(1).(*authDomain.Authorization)
			}).
			Return(nil).
			Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForVerificationDowngrade(ctx, []int64{1})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		require.NotNil(t, persisted)
		require.Len(t, persisted.Destinations, 3)

		revoked := persisted.Destinations[0]
		assert.Equal(t, authDomain.BeamModeNone, revoked.BeamMode)
		assert.Nil(t, revoked.CWLimit)
		require.NotNil(t, revoked.Comments)
		assert.Equal(t,
			"Permission automatically revoked due to group credited control verification downgrade",
			*revoked.Comments,
		)

		// Non-matched rows are field-for-field identical to the source rows.
		assert.Equal(t, current.Destinations[1].BeamMode, persisted.Destinations[1].BeamMode)
		assert.Equal(t, current.Destinations[2].BeamMode, persisted.Destinations[2].BeamMode)

		// The source version is never mutated.
		assert.Equal(t, "CW", current.Destinations[0].BeamMode)
		assert.NotNil(t, current.Destinations[0].CWLimit)
	})

	t.Run("NoOp_MatchedRowAlreadyNone", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		mockRepo.On("FindCurrent", ctx).Return(currentAuthorization(), nil).Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		// Destination 2 is already None: no new version may be created.
		err := engine.ClearForVerificationDowngrade(ctx, []int64{2})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
	})

	t.Run("NoOp_NoMatches", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		mockRepo.On("FindCurrent", ctx).Return(currentAuthorization(), nil).Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForVerificationDowngrade(ctx, []int64{99})

		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
	})

	t.Run("NoOp_EmptyDestinationList", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		mockRepo.On("FindCurrent", ctx).
			Return(&authDomain.Authorization{ID: 11}, nil).
			Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForVerificationDowngrade(ctx, []int64{1})

		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
	})

	t.Run("NoOp_NoCurrentVersion", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		mockRepo.On("FindCurrent", ctx).
			Return(nil, authDomain.ErrAuthorizationNotFound).
			Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForVerificationDowngrade(ctx, []int64{1})

		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
	})
}

func TestRevocationEngine_ClearForVerificationExpiration(t *testing.T) {
	ctx := context.Background()

	mockRepo := &mockAuthorizationRepository{}
	mockRepo.On("FindCurrent", ctx).Return(currentAuthorization(), nil).Once()

	var persisted *authDomain.Authorization
	mockRepo.On("CreateVersion", ctx, mock.AnythingOfType("*domain.Authorization")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*authDomain.Authorization)
		}).
		Return(nil).
		Once()

	engine := NewRevocationEngine(mockRepo, testLogger())

	err := engine.ClearForVerificationExpiration(ctx, []int64{3})

	require.NoError(t, err)
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.Destinations[2].Comments)
	assert.Equal(t,
		"Permission automatically revoked due to group credited control verification expiration",
		*persisted.Destinations[2].Comments,
	)
}

func TestRevocationEngine_ClearForExpiredAuthorizations(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RevokesExpiredDestinations", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		current := currentAuthorization()
		mockRepo.On("FindCurrent", ctx).Return(current, nil).Once()

		var persisted *authDomain.Authorization
		mockRepo.On("CreateVersion", ctx, mock.AnythingOfType("*domain.Authorization")).
			Run(func(args mock.Arguments) {
				persisted = args.Get(1).(*authDomain.Authorization)
			}).
			Return(nil).
			Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForExpiredAuthorizations(ctx, []*authDomain.DestinationAuthorization{
			current.Destinations[0],
			current.Destinations[2],
		})

		require.NoError(t, err)
		require.NotNil(t, persisted)
		for _, i := range []int{0, 2} {
			dest := persisted.Destinations[i]
			assert.Equal(t, authDomain.BeamModeNone, dest.BeamMode)
			require.NotNil(t, dest.Comments)
			assert.Equal(t,
				"Permission automatically revoked due to director's authorization expiration",
				*dest.Comments,
			)
		}
	})

	t.Run("Error_PersistFailure", func(t *testing.T) {
		mockRepo := &mockAuthorizationRepository{}
		current := currentAuthorization()
		mockRepo.On("FindCurrent", ctx).Return(current, nil).Once()
		mockRepo.On("CreateVersion", ctx, mock.Anything).Return(assert.AnError).Once()

		engine := NewRevocationEngine(mockRepo, testLogger())

		err := engine.ClearForExpiredAuthorizations(ctx, []*authDomain.DestinationAuthorization{
			current.Destinations[0],
		})

		assert.Error(t, err)
	})
}
