package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// OnboardingRequest assigns the account role. The role can be chosen exactly
// once; later attempts are rejected.
type OnboardingRequest struct {
	Role string `form:"role" json:"role" validate:"required,oneof=instructor learner"`
}

// ProfileResponse is the serialized profile representation.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Onboarded bool      `json:"onboarded"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileResponse converts a model into a DTO.
func NewProfileResponse(model models.Profile) ProfileResponse {
	role := ""
	if model.Role != nil {
		role = string(*model.Role)
	}

	return ProfileResponse{
		ID:        model.ID,
		Email:     model.Email,
		Name:      model.Name,
		Role:      role,
		Onboarded: model.Onboarded,
		CreatedAt: model.CreatedAt,
	}
}
