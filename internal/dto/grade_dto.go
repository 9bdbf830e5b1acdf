package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// GradeRequest is the payload for grading a submission. Score is a pointer so
// an explicit zero survives the required check. RequestResubmit moves the
// submission to resubmit_requested instead of graded.
type GradeRequest struct {
	Score           *float64 `form:"score" json:"score" validate:"required,min=0,max=100"`
	Feedback        string   `form:"feedback" json:"feedback" validate:"omitempty,max=5000"`
	RequestResubmit bool     `form:"request_resubmit" json:"request_resubmit"`
}

// GradeResponse is the serialized grade representation.
type GradeResponse struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Score        float64   `json:"score"`
	Feedback     string    `json:"feedback"`
	GradedBy     string    `json:"graded_by"`
	GradedByName string    `json:"graded_by_name"`
	GradedAt     time.Time `json:"graded_at"`
}

// NewGradeResponse converts a model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		Score:        model.Score,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedByName: model.GradedByName,
		GradedAt:     model.GradedAt,
	}
}
