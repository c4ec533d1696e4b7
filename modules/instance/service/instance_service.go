package service

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/database"
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/realtime"
	"date-booker/core/utils"
	"date-booker/modules/instance/dto"
	"date-booker/modules/instance/entity"
	"date-booker/modules/instance/repository"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxSlugSuffix = 50

// InstanceLookup is what other modules need to resolve an instance from a
// route parameter and check a token against it.
type InstanceLookup interface {
	ResolveInstance(ctx context.Context, slugOrID string) (*entity.Instance, *errors.AppError)
	ResolveForToken(ctx context.Context, slugOrID string, claims *utils.TokenClaims) (*entity.Instance, *errors.AppError)
	GetParticipants(ctx context.Context, instanceID uuid.UUID) ([]entity.Participant, *errors.AppError)
}

// InstanceServiceInterface defines the service contract
type InstanceServiceInterface interface {
	InstanceLookup

	CreateInstance(ctx context.Context, req *dto.CreateInstanceRequest) (*dto.CreateInstanceResponse, *errors.AppError)
	GetInstance(ctx context.Context, slugOrID string) (*dto.InstanceResponse, *errors.AppError)
	ListParticipants(ctx context.Context, slugOrID string) ([]dto.ParticipantResponse, *errors.AppError)
	AddParticipant(ctx context.Context, claims *utils.TokenClaims, slugOrID string, req *dto.AddParticipantRequest) (*dto.ParticipantResponse, *errors.AppError)
	RemoveParticipant(ctx context.Context, claims *utils.TokenClaims, slugOrID string, participantID uuid.UUID) *errors.AppError
	DeleteInstance(ctx context.Context, claims *utils.TokenClaims, slugOrID string) *errors.AppError
	DeleteExpired(ctx context.Context, now time.Time) (int64, *errors.AppError)
}

type Options struct {
	JWTSecret     string
	AdminTTL      time.Duration
	MaxRangeDays  int
	RetentionDays int
}

type InstanceService struct {
	repo      repository.InstanceRepositoryInterface
	publisher realtime.Publisher
	opts      Options
}

func NewInstanceService(repo repository.InstanceRepositoryInterface, publisher realtime.Publisher, opts Options) *InstanceService {
	return &InstanceService{
		repo:      repo,
		publisher: publisher,
		opts:      opts,
	}
}

// CreateInstance validates the request, stores the instance with its roster
// and returns an admin token for it.
func (s *InstanceService) CreateInstance(ctx context.Context, req *dto.CreateInstanceRequest) (*dto.CreateInstanceResponse, *errors.AppError) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Name is required", nil)
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Password is required", nil)
	}

	start, end, appErr := s.parseRange(req.StartDate, req.EndDate)
	if appErr != nil {
		return nil, appErr
	}

	names, appErr := NormalizeNames(req.Participants)
	if appErr != nil {
		return nil, appErr
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash password", err)
	}

	instanceSlug, appErr := s.uniqueSlug(ctx, name)
	if appErr != nil {
		return nil, appErr
	}

	instance := &entity.Instance{
		Slug:         instanceSlug,
		Name:         name,
		PasswordHash: hash,
		StartDate:    start,
		EndDate:      end,
	}

	created, participants, err := s.repo.CreateInstance(ctx, instance, names)
	if err != nil && database.IsUniqueViolation(err) {
		// lost a race on the slug
		instance.Slug = instanceSlug + "-" + utils.GenerateID()
		created, participants, err = s.repo.CreateInstance(ctx, instance, names)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create instance", err)
	}

	token, err := utils.GenerateToken(s.opts.JWTSecret, created.ID, uuid.Nil, constants.ScopeTokenAdmin, s.opts.AdminTTL)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue admin token", err)
	}

	logger.Info("InstanceService:CreateInstance", "instance_id", created.ID, "slug", created.Slug, "participants", len(participants))

	return &dto.CreateInstanceResponse{
		Instance:   dto.ToInstanceResponse(created, participants),
		AdminToken: token,
	}, nil
}

func (s *InstanceService) parseRange(startRaw, endRaw string) (time.Time, time.Time, *errors.AppError) {
	start, err := time.Parse(constants.DateKeyLayout, strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid start date", err)
	}
	end, err := time.Parse(constants.DateKeyLayout, strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid end date", err)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Start date must not be after end date", nil)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if s.opts.MaxRangeDays > 0 && days > s.opts.MaxRangeDays {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("Date range must not exceed %d days", s.opts.MaxRangeDays), nil)
	}
	return start, end, nil
}

// NormalizeNames trims roster names and rejects blanks and case-insensitive
// duplicates. At least one name is required.
func NormalizeNames(raw []string) ([]string, *errors.AppError) {
	if len(raw) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "At least one participant is required", nil)
	}

	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Participant names must not be blank", nil)
		}
		key := strings.ToLower(n)
		if _, dup := seen[key]; dup {
			return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("Duplicate participant name %q", n), nil)
		}
		seen[key] = struct{}{}
		names = append(names, n)
	}
	return names, nil
}

// uniqueSlug derives a URL slug from the instance name, appending -1, -2, ...
// on collision.
func (s *InstanceService) uniqueSlug(ctx context.Context, name string) (string, *errors.AppError) {
	base := slug.Make(name)
	if base == "" {
		base = utils.GenerateID()
	}

	candidate := base
	for i := 1; i <= maxSlugSuffix; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", errors.NewAppError(errors.ErrInternalServer, "Failed to check slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + utils.GenerateID(), nil
}

// ResolveInstance finds an instance by slug, falling back to its id.
func (s *InstanceService) ResolveInstance(ctx context.Context, slugOrID string) (*entity.Instance, *errors.AppError) {
	slugOrID = strings.TrimSpace(slugOrID)
	if slugOrID == "" {
		return nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil)
	}

	instance, err := s.repo.GetInstanceBySlug(ctx, slugOrID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get instance", err)
	}
	if instance == nil {
		if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
			instance, err = s.repo.GetInstanceByID(ctx, id)
			if err != nil {
				return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get instance", err)
			}
		}
	}
	if instance == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil)
	}
	return instance, nil
}

// ResolveForToken resolves the instance and checks that the token was issued
// for it. Participant tokens must also still belong to the roster.
func (s *InstanceService) ResolveForToken(ctx context.Context, slugOrID string, claims *utils.TokenClaims) (*entity.Instance, *errors.AppError) {
	if claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	instance, appErr := s.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}
	if instance.ID != claims.InstanceID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Token does not belong to this instance", nil)
	}

	if claims.Scope == constants.ScopeTokenParticipant {
		p, err := s.repo.GetParticipantByID(ctx, instance.ID, claims.ParticipantID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get participant", err)
		}
		if p == nil {
			return nil, errors.NewAppError(errors.ErrUnauthorized, "Participant is no longer part of this instance", nil)
		}
	}
	return instance, nil
}

func (s *InstanceService) GetParticipants(ctx context.Context, instanceID uuid.UUID) ([]entity.Participant, *errors.AppError) {
	participants, err := s.repo.GetParticipants(ctx, instanceID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get participants", err)
	}
	return participants, nil
}

func (s *InstanceService) GetInstance(ctx context.Context, slugOrID string) (*dto.InstanceResponse, *errors.AppError) {
	instance, appErr := s.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	participants, appErr := s.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToInstanceResponse(instance, participants), nil
}

func (s *InstanceService) ListParticipants(ctx context.Context, slugOrID string) ([]dto.ParticipantResponse, *errors.AppError) {
	instance, appErr := s.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	participants, appErr := s.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToParticipantResponses(participants), nil
}

func (s *InstanceService) AddParticipant(ctx context.Context, claims *utils.TokenClaims, slugOrID string, req *dto.AddParticipantRequest) (*dto.ParticipantResponse, *errors.AppError) {
	instance, appErr := s.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return nil, appErr
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Participant names must not be blank", nil)
	}

	existing, appErr := s.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, fmt.Sprintf("Participant %q already exists", name), nil)
		}
	}

	created, err := s.repo.AddParticipant(ctx, instance.ID, name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, fmt.Sprintf("Participant %q already exists", name), err)
		}
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to add participant", err)
	}

	resp := dto.ToParticipantResponse(created)
	realtime.PublishSafe(ctx, s.publisher, realtime.NewEvent(realtime.EventParticipantAdded, instance.ID, &created.ID, resp))
	return &resp, nil
}

func (s *InstanceService) RemoveParticipant(ctx context.Context, claims *utils.TokenClaims, slugOrID string, participantID uuid.UUID) *errors.AppError {
	instance, appErr := s.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return appErr
	}

	removed, err := s.repo.RemoveParticipant(ctx, instance.ID, participantID)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to remove participant", err)
	}
	if !removed {
		return errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}

	realtime.PublishSafe(ctx, s.publisher, realtime.NewEvent(realtime.EventParticipantRemoved, instance.ID, &participantID, nil))
	return nil
}

func (s *InstanceService) DeleteInstance(ctx context.Context, claims *utils.TokenClaims, slugOrID string) *errors.AppError {
	instance, appErr := s.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return appErr
	}

	if err := s.repo.DeleteInstance(ctx, instance.ID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete instance", err)
	}

	logger.Info("InstanceService:DeleteInstance", "instance_id", instance.ID, "slug", instance.Slug)
	realtime.PublishSafe(ctx, s.publisher, realtime.NewEvent(realtime.EventInstanceDeleted, instance.ID, nil, nil))
	return nil
}

// DeleteExpired removes instances whose end date is more than RetentionDays
// before now. A zero retention keeps everything.
func (s *InstanceService) DeleteExpired(ctx context.Context, now time.Time) (int64, *errors.AppError) {
	if s.opts.RetentionDays <= 0 {
		return 0, nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -s.opts.RetentionDays)

	n, err := s.repo.DeleteInstancesEndedBefore(ctx, cutoff)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete expired instances", err)
	}
	return n, nil
}
