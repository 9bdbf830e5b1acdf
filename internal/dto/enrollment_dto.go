package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// EnrollmentResponse is the serialized enrollment representation.
type EnrollmentResponse struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"course_id"`
	LearnerID string          `json:"learner_id"`
	CreatedAt time.Time       `json:"created_at"`
	Course    *CourseResponse `json:"course,omitempty"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		LearnerID: model.LearnerID,
		CreatedAt: model.CreatedAt,
	}

	if model.Course.ID != "" {
		course := NewCourseResponse(model.Course)
		response.Course = &course
	}

	return response
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
