package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// CourseDraftRequest is the payload for creating or updating a course draft.
// The description may be omitted entirely while drafting, but once present it
// must be a real description.
type CourseDraftRequest struct {
	Title        string `form:"title" json:"title" validate:"required,min=1,max=200"`
	Description  string `form:"description" json:"description" validate:"omitempty,min=10,max=5000"`
	ThumbnailURL string `form:"thumbnail_url" json:"thumbnail_url" validate:"omitempty,url"`
}

// CoursePublishCheck re-validates the persisted course fields against the
// stricter publish schema, where the description is mandatory.
type CoursePublishCheck struct {
	Title        string `validate:"required,min=1,max=200"`
	Description  string `validate:"required,min=10,max=5000"`
	ThumbnailURL string `validate:"omitempty,url"`
}

// CourseResponse is the serialized course representation.
type CourseResponse struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructor_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CourseDetailResponse includes the course's published assignments for the catalog view.
type CourseDetailResponse struct {
	CourseResponse
	Assignments []AssignmentResponse `json:"assignments"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:           model.ID,
		InstructorID: model.InstructorID,
		Title:        model.Title,
		Description:  model.Description,
		ThumbnailURL: model.ThumbnailURL,
		Status:       model.Status,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}
