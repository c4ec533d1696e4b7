package service

import (
	"context"
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/realtime"
	"date-booker/core/utils"
	"date-booker/modules/availability/dto"
	"date-booker/modules/availability/entity"
	"date-booker/modules/availability/repository"
	instanceEntity "date-booker/modules/instance/entity"
	instanceService "date-booker/modules/instance/service"

	"github.com/google/uuid"
)

// AvailabilityServiceInterface defines the service contract
type AvailabilityServiceInterface interface {
	GetBoard(ctx context.Context, slugOrID string) (*dto.BoardResponse, *errors.AppError)
	GetBestDays(ctx context.Context, slugOrID string) (*dto.BestDaysResponse, *errors.AppError)
	BuildBoard(ctx context.Context, instance *instanceEntity.Instance) (*dto.BoardResponse, *errors.AppError)

	ToggleAvailability(ctx context.Context, claims *utils.TokenClaims, slugOrID, date string) (*dto.ParticipantState, *errors.AppError)
	ToggleFavorite(ctx context.Context, claims *utils.TokenClaims, slugOrID, date string) (*dto.ParticipantState, *errors.AppError)
	SetAllAvailability(ctx context.Context, claims *utils.TokenClaims, slugOrID string, value bool) (*dto.ParticipantState, *errors.AppError)
	ToggleCantAttend(ctx context.Context, claims *utils.TokenClaims, slugOrID string) (*dto.ParticipantState, *errors.AppError)
}

type AvailabilityService struct {
	repo      repository.AvailabilityRepositoryInterface
	instances instanceService.InstanceLookup
	publisher realtime.Publisher
}

func NewAvailabilityService(repo repository.AvailabilityRepositoryInterface, instances instanceService.InstanceLookup, publisher realtime.Publisher) *AvailabilityService {
	return &AvailabilityService{
		repo:      repo,
		instances: instances,
		publisher: publisher,
	}
}

// ===================== Reads =====================

func (s *AvailabilityService) GetBoard(ctx context.Context, slugOrID string) (*dto.BoardResponse, *errors.AppError) {
	instance, appErr := s.instances.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}
	return s.BuildBoard(ctx, instance)
}

func (s *AvailabilityService) GetBestDays(ctx context.Context, slugOrID string) (*dto.BestDaysResponse, *errors.AppError) {
	board, appErr := s.GetBoard(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	return &dto.BestDaysResponse{
		InstanceID:        board.InstanceID,
		RespondedCount:    board.RespondedCount,
		TotalParticipants: board.TotalParticipants,
		Groups:            board.BestDays,
	}, nil
}

// BuildBoard reads a fresh snapshot of the instance and ranks its days.
func (s *AvailabilityService) BuildBoard(ctx context.Context, instance *instanceEntity.Instance) (*dto.BoardResponse, *errors.AppError) {
	participants, appErr := s.instances.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}

	availability, err := s.repo.GetAvailability(ctx, instance.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get availability", err)
	}
	favorites, err := s.repo.GetFavorites(ctx, instance.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get favorites", err)
	}
	responses, err := s.repo.GetResponses(ctx, instance.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get responses", err)
	}

	slots := DateRange(instance.StartDate, instance.EndDate)
	ids := instanceEntity.ParticipantIDs(participants)

	board := &dto.BoardResponse{
		InstanceID:        instance.ID.String(),
		DateSlots:         slots,
		Participants:      make([]dto.ParticipantState, 0, len(participants)),
		CantAttend:        make([]string, 0),
		RespondedCount:    RespondedCount(ids, responses),
		TotalParticipants: len(participants),
		BestDays:          ComputeBestDays(slots, ids, availability, favorites, responses),
	}

	for _, p := range participants {
		status := responses[p.ID]
		board.Participants = append(board.Participants, dto.ParticipantState{
			ParticipantID: p.ID.String(),
			Name:          p.Name,
			HasResponded:  status.HasResponded,
			CantAttend:    status.CantAttend,
			Available:     availability.Dates(p.ID, slots),
			Favorites:     favorites.Dates(p.ID, slots),
		})
		if status.CantAttend {
			board.CantAttend = append(board.CantAttend, p.ID.String())
		}
	}

	return board, nil
}

// ===================== Writes =====================

// ToggleAvailability flips one date for the token's participant. Turning a
// date off also drops its favorite.
func (s *AvailabilityService) ToggleAvailability(ctx context.Context, claims *utils.TokenClaims, slugOrID, date string) (*dto.ParticipantState, *errors.AppError) {
	instance, marks, appErr := s.load(ctx, claims, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	day, appErr := parseSlot(instance, date)
	if appErr != nil {
		return nil, appErr
	}

	if marks.Response.CantAttend {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Clear \"can't attend\" before marking availability", nil)
	}

	newValue := !marks.Available[day]
	response := entity.ResponseStatus{
		HasResponded: newValue || hasOtherAvailable(marks.Available, day),
		CantAttend:   marks.Response.CantAttend,
	}

	if err := s.repo.SetAvailability(ctx, instance.ID, claims.ParticipantID, day, newValue, response); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update availability", err)
	}

	marks.Available[day] = newValue
	if !newValue {
		delete(marks.Favorites, day)
	}
	marks.Response = response

	return s.publishState(ctx, instance, claims.ParticipantID, marks), nil
}

// ToggleFavorite flips the favorite flag of a date the participant is
// available on.
func (s *AvailabilityService) ToggleFavorite(ctx context.Context, claims *utils.TokenClaims, slugOrID, date string) (*dto.ParticipantState, *errors.AppError) {
	instance, marks, appErr := s.load(ctx, claims, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	day, appErr := parseSlot(instance, date)
	if appErr != nil {
		return nil, appErr
	}

	if !marks.Available[day] {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "You must mark this day as available before favoriting", nil)
	}

	newValue := !marks.Favorites[day]
	response := marks.Response
	if newValue {
		response.HasResponded = true
	}

	if err := s.repo.SetFavorite(ctx, instance.ID, claims.ParticipantID, day, newValue, response); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update favorite", err)
	}

	marks.Favorites[day] = newValue
	marks.Response = response

	return s.publishState(ctx, instance, claims.ParticipantID, marks), nil
}

// SetAllAvailability marks every date available, or clears every mark.
func (s *AvailabilityService) SetAllAvailability(ctx context.Context, claims *utils.TokenClaims, slugOrID string, value bool) (*dto.ParticipantState, *errors.AppError) {
	instance, marks, appErr := s.load(ctx, claims, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	if value {
		slots := DateRange(instance.StartDate, instance.EndDate)
		response := entity.ResponseStatus{HasResponded: true, CantAttend: false}
		if err := s.repo.SetAllAvailable(ctx, instance.ID, claims.ParticipantID, slots, response); err != nil {
			return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update availability", err)
		}
		for _, d := range slots {
			marks.Available[d] = true
		}
		marks.Response = response
	} else {
		response := entity.ResponseStatus{HasResponded: false, CantAttend: false}
		if err := s.repo.ClearParticipant(ctx, instance.ID, claims.ParticipantID, response); err != nil {
			return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to clear availability", err)
		}
		clearMarks(marks)
		marks.Response = response
	}

	return s.publishState(ctx, instance, claims.ParticipantID, marks), nil
}

// ToggleCantAttend flips the can't-attend flag. Setting it wipes the
// participant's availability and favorites.
func (s *AvailabilityService) ToggleCantAttend(ctx context.Context, claims *utils.TokenClaims, slugOrID string) (*dto.ParticipantState, *errors.AppError) {
	instance, marks, appErr := s.load(ctx, claims, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	newValue := !marks.Response.CantAttend
	response := entity.ResponseStatus{HasResponded: true, CantAttend: newValue}

	var err error
	if newValue {
		err = s.repo.ClearParticipant(ctx, instance.ID, claims.ParticipantID, response)
	} else {
		err = s.repo.SetResponse(ctx, instance.ID, claims.ParticipantID, response)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update attendance", err)
	}

	if newValue {
		clearMarks(marks)
	}
	marks.Response = response

	return s.publishState(ctx, instance, claims.ParticipantID, marks), nil
}

// ===================== Helpers =====================

func (s *AvailabilityService) load(ctx context.Context, claims *utils.TokenClaims, slugOrID string) (*instanceEntity.Instance, *entity.ParticipantMarks, *errors.AppError) {
	instance, appErr := s.instances.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return nil, nil, appErr
	}

	marks, err := s.repo.GetParticipantMarks(ctx, instance.ID, claims.ParticipantID)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get availability", err)
	}
	if marks.Available == nil {
		marks.Available = make(map[entity.DateKey]bool)
	}
	if marks.Favorites == nil {
		marks.Favorites = make(map[entity.DateKey]bool)
	}
	return instance, marks, nil
}

func (s *AvailabilityService) publishState(ctx context.Context, instance *instanceEntity.Instance, participantID uuid.UUID, marks *entity.ParticipantMarks) *dto.ParticipantState {
	state := ToParticipantState(participantID, marks, DateRange(instance.StartDate, instance.EndDate))

	logger.Debug("AvailabilityService:Updated", "instance_id", instance.ID, "participant_id", participantID,
		"has_responded", state.HasResponded, "cant_attend", state.CantAttend)

	realtime.PublishSafe(ctx, s.publisher,
		realtime.NewEvent(realtime.EventAvailabilityUpdated, instance.ID, &participantID, state))
	return state
}

// ToParticipantState renders marks restricted to the instance's date slots.
func ToParticipantState(participantID uuid.UUID, marks *entity.ParticipantMarks, slots []entity.DateKey) *dto.ParticipantState {
	state := &dto.ParticipantState{
		ParticipantID: participantID.String(),
		HasResponded:  marks.Response.HasResponded,
		CantAttend:    marks.Response.CantAttend,
		Available:     make([]entity.DateKey, 0),
		Favorites:     make([]entity.DateKey, 0),
	}
	for _, d := range slots {
		if marks.Available[d] {
			state.Available = append(state.Available, d)
		}
		if marks.Favorites[d] {
			state.Favorites = append(state.Favorites, d)
		}
	}
	return state
}

func parseSlot(instance *instanceEntity.Instance, raw string) (entity.DateKey, *errors.AppError) {
	day, err := entity.ParseDateKey(raw)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInvalidInput, "Date must be formatted YYYY-MM-DD", err)
	}
	if !ContainsDate(DateRange(instance.StartDate, instance.EndDate), day) {
		return "", errors.NewAppError(errors.ErrInvalidInput, "Date is outside the instance range", nil)
	}
	return day, nil
}

func hasOtherAvailable(available map[entity.DateKey]bool, except entity.DateKey) bool {
	for d, v := range available {
		if v && d != except {
			return true
		}
	}
	return false
}

func clearMarks(marks *entity.ParticipantMarks) {
	marks.Available = make(map[entity.DateKey]bool)
	marks.Favorites = make(map[entity.DateKey]bool)
}
