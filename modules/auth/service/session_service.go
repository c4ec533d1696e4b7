package service

import (
	"context"
	"date-booker/core/cache"
	"date-booker/core/constants"
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/utils"
	"date-booker/modules/auth/dto"
	instanceService "date-booker/modules/instance/service"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SessionServiceInterface interface {
	Join(ctx context.Context, slugOrID, clientIP string, req *dto.JoinRequest) (*dto.JoinResponse, *errors.AppError)
	Leave(ctx context.Context, slugOrID string, claims *utils.TokenClaims) *errors.AppError
}

type Options struct {
	JWTSecret      string
	ParticipantTTL time.Duration
	BlockDuration  time.Duration
}

// SessionService issues participant tokens. Failed joins are counted per
// instance and client address, and blocked once the limit is reached.
type SessionService struct {
	instances instanceService.InstanceLookup
	cache     cache.Cache
	opts      Options
}

func NewSessionService(instances instanceService.InstanceLookup, cache cache.Cache, opts Options) *SessionService {
	if opts.BlockDuration <= 0 {
		opts.BlockDuration = constants.BlockDuration
	}
	return &SessionService{
		instances: instances,
		cache:     cache,
		opts:      opts,
	}
}

func (s *SessionService) Join(ctx context.Context, slugOrID, clientIP string, req *dto.JoinRequest) (*dto.JoinResponse, *errors.AppError) {
	instance, appErr := s.instances.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	attemptKey := fmt.Sprintf(constants.RedisKeyJoinAttempt, instance.ID.String(), clientIP)

	blocked, err := s.cache.IsLoginBlocked(ctx, attemptKey)
	if err != nil {
		logger.Error("SessionService:Join:IsLoginBlocked:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check join attempts", err)
	}
	if blocked {
		if err := s.cache.Expire(ctx, attemptKey, s.opts.BlockDuration); err != nil {
			logger.Error("SessionService:Join:Expire:Error", "error", err)
		}
		return nil, errors.NewAppError(errors.ErrTooManyRequests,
			fmt.Sprintf("Too many failed attempts, try again in %s", s.opts.BlockDuration), nil)
	}

	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid participant ID", err)
	}

	participants, appErr := s.instances.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}

	var name string
	found := false
	for _, p := range participants {
		if p.ID == participantID {
			name, found = p.Name, true
			break
		}
	}
	if !found {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}

	if !utils.ComparePassword(instance.PasswordHash, req.Password) {
		if err := s.cache.IncrementLoginAttempt(ctx, attemptKey); err != nil {
			logger.Error("SessionService:Join:IncrementLoginAttempt:Error", "error", err)
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to record join attempt", err)
		}
		logger.Warn("SessionService:Join:WrongPassword", "instance_id", instance.ID, "client_ip", clientIP)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Incorrect password", nil)
	}

	token, err := utils.GenerateToken(s.opts.JWTSecret, instance.ID, participantID, constants.ScopeTokenParticipant, s.opts.ParticipantTTL)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to generate access token", err)
	}

	if err := s.cache.Del(ctx, attemptKey); err != nil {
		logger.Error("SessionService:Join:Del:Error", "error", err)
	}

	return &dto.JoinResponse{
		AccessToken:     token,
		ExpiresAt:       time.Now().Add(s.opts.ParticipantTTL).UTC(),
		InstanceID:      instance.ID.String(),
		InstanceSlug:    instance.Slug,
		ParticipantID:   participantID.String(),
		ParticipantName: name,
	}, nil
}

// Leave revokes the token until it would have expired anyway.
func (s *SessionService) Leave(ctx context.Context, slugOrID string, claims *utils.TokenClaims) *errors.AppError {
	if claims == nil {
		return errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	instance, appErr := s.instances.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return appErr
	}
	if instance.ID != claims.InstanceID {
		return errors.NewAppError(errors.ErrForbidden, "Token does not belong to this instance", nil)
	}

	if err := s.cache.AddToTokenBlacklist(ctx, claims.ID, claims.TTL()); err != nil {
		logger.Error("SessionService:Leave:AddToTokenBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to revoke token", err)
	}
	return nil
}
