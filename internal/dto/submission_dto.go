package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// SubmissionCreateRequest is the payload a learner sends when submitting.
type SubmissionCreateRequest struct {
	Content string `form:"content" json:"content" validate:"required,min=1,max=10000"`
	FileURL string `form:"file_url" json:"file_url" validate:"omitempty,url"`
}

// SubmissionResponse is the serialized submission representation, including
// the grade when one exists.
type SubmissionResponse struct {
	ID           string         `json:"id"`
	AssignmentID string         `json:"assignment_id"`
	LearnerID    string         `json:"learner_id"`
	Content      string         `json:"content"`
	FileURL      string         `json:"file_url"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	IsLate       bool           `json:"is_late"`
	Status       string         `json:"status"`
	Grade        *GradeResponse `json:"grade,omitempty"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		LearnerID:    model.LearnerID,
		Content:      model.Content,
		FileURL:      model.FileURL,
		SubmittedAt:  model.SubmittedAt,
		IsLate:       model.IsLate,
		Status:       model.Status,
	}

	if model.Grade != nil {
		grade := NewGradeResponse(*model.Grade)
		response.Grade = &grade
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
