package models

import "time"

// Submission states. A submission starts as submitted and moves to graded or
// resubmit_requested through grading actions; it never returns to submitted.
const (
	SubmissionStatusSubmitted         = "submitted"
	SubmissionStatusGraded            = "graded"
	SubmissionStatusResubmitRequested = "resubmit_requested"
)

// Submission is a learner's answer to a published assignment. The unique
// index enforces one submission per (assignment, learner); a duplicate insert
// surfaces as a conflict rather than being merged. IsLate is computed once at
// submission time and never recomputed.
type Submission struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	AssignmentID string     `gorm:"size:36;not null;uniqueIndex:idx_submissions_assignment_learner" json:"assignment_id"`
	LearnerID    string     `gorm:"size:36;not null;uniqueIndex:idx_submissions_assignment_learner" json:"learner_id"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	IsLate       bool       `gorm:"not null;default:false" json:"is_late"`
	Status       string     `gorm:"size:32;not null;default:submitted" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment,omitempty"`
	Grade        *Grade     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"grade,omitempty"`
}

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
