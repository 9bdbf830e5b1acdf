package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// ProfileService covers account onboarding and profile reads.
type ProfileService interface {
	GetOwn(ctx context.Context) (dto.ProfileResponse, error)
	Onboard(ctx context.Context, payload dto.OnboardingRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	guards    *GuardService
	repo      repository.ProfileRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileService builds the profile service.
func NewProfileService(guards *GuardService, repo repository.ProfileRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		guards:    guards,
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) GetOwn(ctx context.Context) (dto.ProfileResponse, error) {
	principal, err := s.guards.RequireUser(ctx)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	profile, err := s.repo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, persistence("profiles.get", err)
	}

	return dto.NewProfileResponse(profile), nil
}

// Onboard assigns the account role exactly once. A profile that already
// finished onboarding cannot switch sides.
func (s *profileService) Onboard(ctx context.Context, payload dto.OnboardingRequest) (dto.ProfileResponse, error) {
	principal, err := s.guards.RequireUser(ctx)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, newValidationError(err)
	}

	profile, err := s.repo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, persistence("profiles.get", err)
	}

	if profile.Onboarded {
		return dto.ProfileResponse{}, ErrAlreadyOnboarded
	}

	role := models.Role(payload.Role)
	profile.Role = &role
	profile.Onboarded = true

	if err := s.repo.Update(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, persistence("profiles.update", err)
	}

	s.logger.Info().Str("profile_id", profile.ID).Str("role", payload.Role).Msg("profile onboarded")

	return dto.NewProfileResponse(profile), nil
}
