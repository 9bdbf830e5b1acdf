package dto

import (
	"time"

	"github.com/edubridge-kr/lms-api/internal/models"
)

// AssignmentDraftRequest is the payload for creating or updating an
// assignment draft. Dates travel as RFC3339 strings and are parsed by the
// service; the late-window rule (deadline strictly after the due date) is a
// cross-field check the service appends to the field errors.
type AssignmentDraftRequest struct {
	Title                  string `form:"title" json:"title" validate:"required,min=1,max=200"`
	Description            string `form:"description" json:"description" validate:"omitempty,min=10,max=5000"`
	DueDate                string `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	AllowLateSubmission    bool   `form:"allow_late_submission" json:"allow_late_submission"`
	LateSubmissionDeadline string `form:"late_submission_deadline" json:"late_submission_deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentPublishCheck re-validates the persisted assignment against the
// publish schema, where the description becomes mandatory. The schedule
// fields ride along so the late-window rule runs on every publish pass, not
// only when the draft was last edited.
type AssignmentPublishCheck struct {
	Title                  string     `validate:"required,min=1,max=200"`
	Description            string     `validate:"required,min=10,max=5000"`
	DueDate                time.Time `validate:"required"`
	AllowLateSubmission    bool
	LateSubmissionDeadline *time.Time
}

// AssignmentResponse is the serialized assignment representation.
type AssignmentResponse struct {
	ID                     string     `json:"id"`
	CourseID               string     `json:"course_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	DueDate                time.Time  `json:"due_date"`
	AllowLateSubmission    bool       `json:"allow_late_submission"`
	LateSubmissionDeadline *time.Time `json:"late_submission_deadline"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                     model.ID,
		CourseID:               model.CourseID,
		Title:                  model.Title,
		Description:            model.Description,
		DueDate:                model.DueDate,
		AllowLateSubmission:    model.AllowLateSubmission,
		LateSubmissionDeadline: model.LateSubmissionDeadline,
		Status:                 model.Status,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
