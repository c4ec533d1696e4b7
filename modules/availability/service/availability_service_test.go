package service

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/errors"
	"date-booker/core/realtime"
	"date-booker/core/utils"
	"date-booker/modules/availability/entity"
	instanceEntity "date-booker/modules/instance/entity"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAvailabilityRepo struct {
	mock.Mock
}

func (m *mockAvailabilityRepo) GetAvailability(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error) {
	args := m.Called(ctx, instanceID)
	marks, _ := args.Get(0).(entity.Marks)
	return marks, args.Error(1)
}

func (m *mockAvailabilityRepo) GetFavorites(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error) {
	args := m.Called(ctx, instanceID)
	marks, _ := args.Get(0).(entity.Marks)
	return marks, args.Error(1)
}

func (m *mockAvailabilityRepo) GetResponses(ctx context.Context, instanceID uuid.UUID) (map[uuid.UUID]entity.ResponseStatus, error) {
	args := m.Called(ctx, instanceID)
	responses, _ := args.Get(0).(map[uuid.UUID]entity.ResponseStatus)
	return responses, args.Error(1)
}

func (m *mockAvailabilityRepo) GetParticipantMarks(ctx context.Context, instanceID, participantID uuid.UUID) (*entity.ParticipantMarks, error) {
	args := m.Called(ctx, instanceID, participantID)
	marks, _ := args.Get(0).(*entity.ParticipantMarks)
	return marks, args.Error(1)
}

func (m *mockAvailabilityRepo) SetAvailability(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error {
	return m.Called(ctx, instanceID, participantID, date, value, response).Error(0)
}

func (m *mockAvailabilityRepo) SetFavorite(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error {
	return m.Called(ctx, instanceID, participantID, date, value, response).Error(0)
}

func (m *mockAvailabilityRepo) SetAllAvailable(ctx context.Context, instanceID, participantID uuid.UUID, dates []entity.DateKey, response entity.ResponseStatus) error {
	return m.Called(ctx, instanceID, participantID, dates, response).Error(0)
}

func (m *mockAvailabilityRepo) ClearParticipant(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error {
	return m.Called(ctx, instanceID, participantID, response).Error(0)
}

func (m *mockAvailabilityRepo) SetResponse(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error {
	return m.Called(ctx, instanceID, participantID, response).Error(0)
}

// fakeInstances serves one instance and roster.
type fakeInstances struct {
	instance     *instanceEntity.Instance
	participants []instanceEntity.Participant
}

func (f *fakeInstances) ResolveInstance(_ context.Context, slugOrID string) (*instanceEntity.Instance, *errors.AppError) {
	if slugOrID != f.instance.Slug {
		return nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil)
	}
	return f.instance, nil
}

func (f *fakeInstances) ResolveForToken(ctx context.Context, slugOrID string, claims *utils.TokenClaims) (*instanceEntity.Instance, *errors.AppError) {
	instance, appErr := f.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}
	if claims.InstanceID != instance.ID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Token does not belong to this instance", nil)
	}
	return instance, nil
}

func (f *fakeInstances) GetParticipants(_ context.Context, _ uuid.UUID) ([]instanceEntity.Participant, *errors.AppError) {
	return f.participants, nil
}

type capturePublisher struct {
	events []realtime.Event
}

func (p *capturePublisher) Publish(_ context.Context, event realtime.Event) error {
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	ctx       context.Context
	repo      *mockAvailabilityRepo
	pub       *capturePublisher
	svc       *AvailabilityService
	instance  *instanceEntity.Instance
	alice     uuid.UUID
	bob       uuid.UUID
	claims    *utils.TokenClaims
	emptyMark func() *entity.ParticipantMarks
}

func newFixture() *fixture {
	instance := &instanceEntity.Instance{
		Slug:      "trip",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	instance.ID = uuid.New()

	alice, bob := uuid.New(), uuid.New()
	instances := &fakeInstances{
		instance: instance,
		participants: []instanceEntity.Participant{
			{ID: alice, InstanceID: instance.ID, Name: "Alice"},
			{ID: bob, InstanceID: instance.ID, Name: "Bob"},
		},
	}

	repo := &mockAvailabilityRepo{}
	pub := &capturePublisher{}

	return &fixture{
		ctx:      context.Background(),
		repo:     repo,
		pub:      pub,
		svc:      NewAvailabilityService(repo, instances, pub),
		instance: instance,
		alice:    alice,
		bob:      bob,
		claims: &utils.TokenClaims{
			InstanceID:    instance.ID,
			ParticipantID: alice,
			Scope:         constants.ScopeTokenParticipant,
		},
		emptyMark: func() *entity.ParticipantMarks {
			return &entity.ParticipantMarks{
				Available: map[entity.DateKey]bool{},
				Favorites: map[entity.DateKey]bool{},
			}
		},
	}
}

func TestToggleAvailability_On(t *testing.T) {
	f := newFixture()
	f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(f.emptyMark(), nil)
	f.repo.On("SetAvailability", f.ctx, f.instance.ID, f.alice, entity.DateKey("2024-06-02"), true,
		entity.ResponseStatus{HasResponded: true}).Return(nil)

	state, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "2024-06-02")
	require.Nil(t, appErr)
	assert.Equal(t, []entity.DateKey{"2024-06-02"}, state.Available)
	assert.True(t, state.HasResponded)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.EventAvailabilityUpdated, f.pub.events[0].Type)
	f.repo.AssertExpectations(t)
}

func TestToggleAvailability_OffClearsFavoriteAndKeepsRespondedWhenOthersRemain(t *testing.T) {
	f := newFixture()
	marks := f.emptyMark()
	marks.Available["2024-06-01"] = true
	marks.Available["2024-06-02"] = true
	marks.Favorites["2024-06-02"] = true
	marks.Response = entity.ResponseStatus{HasResponded: true}

	f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
	f.repo.On("SetAvailability", f.ctx, f.instance.ID, f.alice, entity.DateKey("2024-06-02"), false,
		entity.ResponseStatus{HasResponded: true}).Return(nil)

	state, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "2024-06-02")
	require.Nil(t, appErr)
	assert.Equal(t, []entity.DateKey{"2024-06-01"}, state.Available)
	assert.Empty(t, state.Favorites)
	assert.True(t, state.HasResponded)
}

func TestToggleAvailability_LastDayOffResetsResponded(t *testing.T) {
	f := newFixture()
	marks := f.emptyMark()
	marks.Available["2024-06-01"] = true
	marks.Response = entity.ResponseStatus{HasResponded: true}

	f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
	f.repo.On("SetAvailability", f.ctx, f.instance.ID, f.alice, entity.DateKey("2024-06-01"), false,
		entity.ResponseStatus{HasResponded: false}).Return(nil)

	state, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "2024-06-01")
	require.Nil(t, appErr)
	assert.False(t, state.HasResponded)
	assert.Empty(t, state.Available)
}

func TestToggleAvailability_Rejections(t *testing.T) {
	t.Run("while cant attend", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Response = entity.ResponseStatus{HasResponded: true, CantAttend: true}
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)

		_, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "2024-06-01")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
		f.repo.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("outside range", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(f.emptyMark(), nil)

		_, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "2024-06-04")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(f.emptyMark(), nil)

		_, appErr := f.svc.ToggleAvailability(f.ctx, f.claims, "trip", "June 1st")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("token for another instance", func(t *testing.T) {
		f := newFixture()
		claims := *f.claims
		claims.InstanceID = uuid.New()

		_, appErr := f.svc.ToggleAvailability(f.ctx, &claims, "trip", "2024-06-01")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)
	})
}

func TestToggleFavorite(t *testing.T) {
	t.Run("requires availability", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(f.emptyMark(), nil)

		_, appErr := f.svc.ToggleFavorite(f.ctx, f.claims, "trip", "2024-06-01")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
		assert.Contains(t, appErr.Message, "available before favoriting")
	})

	t.Run("on marks responded", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Available["2024-06-01"] = true
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
		f.repo.On("SetFavorite", f.ctx, f.instance.ID, f.alice, entity.DateKey("2024-06-01"), true,
			entity.ResponseStatus{HasResponded: true}).Return(nil)

		state, appErr := f.svc.ToggleFavorite(f.ctx, f.claims, "trip", "2024-06-01")
		require.Nil(t, appErr)
		assert.Equal(t, []entity.DateKey{"2024-06-01"}, state.Favorites)
		assert.True(t, state.HasResponded)
	})

	t.Run("off keeps response", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Available["2024-06-01"] = true
		marks.Favorites["2024-06-01"] = true
		marks.Response = entity.ResponseStatus{HasResponded: true}
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
		f.repo.On("SetFavorite", f.ctx, f.instance.ID, f.alice, entity.DateKey("2024-06-01"), false,
			entity.ResponseStatus{HasResponded: true}).Return(nil)

		state, appErr := f.svc.ToggleFavorite(f.ctx, f.claims, "trip", "2024-06-01")
		require.Nil(t, appErr)
		assert.Empty(t, state.Favorites)
	})
}

func TestSetAllAvailability(t *testing.T) {
	t.Run("all on", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(f.emptyMark(), nil)
		f.repo.On("SetAllAvailable", f.ctx, f.instance.ID, f.alice,
			[]entity.DateKey{"2024-06-01", "2024-06-02", "2024-06-03"},
			entity.ResponseStatus{HasResponded: true, CantAttend: false}).Return(nil)

		state, appErr := f.svc.SetAllAvailability(f.ctx, f.claims, "trip", true)
		require.Nil(t, appErr)
		assert.Len(t, state.Available, 3)
		assert.True(t, state.HasResponded)
		assert.False(t, state.CantAttend)
	})

	t.Run("all off", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Available["2024-06-01"] = true
		marks.Favorites["2024-06-01"] = true
		marks.Response = entity.ResponseStatus{HasResponded: true}
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
		f.repo.On("ClearParticipant", f.ctx, f.instance.ID, f.alice, entity.ResponseStatus{}).Return(nil)

		state, appErr := f.svc.SetAllAvailability(f.ctx, f.claims, "trip", false)
		require.Nil(t, appErr)
		assert.Empty(t, state.Available)
		assert.Empty(t, state.Favorites)
		assert.False(t, state.HasResponded)
	})
}

func TestToggleCantAttend(t *testing.T) {
	t.Run("on wipes marks", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Available["2024-06-01"] = true
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
		f.repo.On("ClearParticipant", f.ctx, f.instance.ID, f.alice,
			entity.ResponseStatus{HasResponded: true, CantAttend: true}).Return(nil)

		state, appErr := f.svc.ToggleCantAttend(f.ctx, f.claims, "trip")
		require.Nil(t, appErr)
		assert.True(t, state.CantAttend)
		assert.True(t, state.HasResponded)
		assert.Empty(t, state.Available)
	})

	t.Run("off keeps responded", func(t *testing.T) {
		f := newFixture()
		marks := f.emptyMark()
		marks.Response = entity.ResponseStatus{HasResponded: true, CantAttend: true}
		f.repo.On("GetParticipantMarks", f.ctx, f.instance.ID, f.alice).Return(marks, nil)
		f.repo.On("SetResponse", f.ctx, f.instance.ID, f.alice,
			entity.ResponseStatus{HasResponded: true, CantAttend: false}).Return(nil)

		state, appErr := f.svc.ToggleCantAttend(f.ctx, f.claims, "trip")
		require.Nil(t, appErr)
		assert.False(t, state.CantAttend)
		assert.True(t, state.HasResponded)
		f.repo.AssertNotCalled(t, "ClearParticipant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetBoard(t *testing.T) {
	f := newFixture()

	availability := entity.Marks{}
	availability.Set(f.alice, "2024-06-01", true)
	availability.Set(f.alice, "2024-06-02", true)
	availability.Set(f.bob, "2024-06-01", true)
	availability.Set(f.bob, "2024-07-01", true) // outside range, ignored

	favorites := entity.Marks{}
	favorites.Set(f.alice, "2024-06-01", true)

	responses := map[uuid.UUID]entity.ResponseStatus{
		f.alice: {HasResponded: true},
		f.bob:   {HasResponded: true},
	}

	f.repo.On("GetAvailability", f.ctx, f.instance.ID).Return(availability, nil)
	f.repo.On("GetFavorites", f.ctx, f.instance.ID).Return(favorites, nil)
	f.repo.On("GetResponses", f.ctx, f.instance.ID).Return(responses, nil)

	board, appErr := f.svc.GetBoard(f.ctx, "trip")
	require.Nil(t, appErr)

	assert.Equal(t, []entity.DateKey{"2024-06-01", "2024-06-02", "2024-06-03"}, board.DateSlots)
	assert.Equal(t, 2, board.RespondedCount)
	assert.Equal(t, 2, board.TotalParticipants)
	assert.Empty(t, board.CantAttend)

	require.Len(t, board.Participants, 2)
	assert.Equal(t, "Alice", board.Participants[0].Name)
	assert.Equal(t, []entity.DateKey{"2024-06-01", "2024-06-02"}, board.Participants[0].Available)
	assert.Equal(t, []entity.DateKey{"2024-06-01"}, board.Participants[1].Available)

	require.Len(t, board.BestDays, 2)
	assert.Equal(t, 2.5, board.BestDays[0].Score.Float())
	assert.Equal(t, entity.DateKey("2024-06-01"), board.BestDays[0].Days[0].Date)
	assert.Equal(t, 1.0, board.BestDays[1].Score.Float())
}

func TestGetBestDays_UnknownInstance(t *testing.T) {
	f := newFixture()

	_, appErr := f.svc.GetBestDays(f.ctx, "nope")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
