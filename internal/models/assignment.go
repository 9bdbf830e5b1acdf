package models

import "time"

// Assignment lifecycle states.
const (
	// AssignmentStatusDraft means the assignment is invisible to learners.
	AssignmentStatusDraft = "draft"
	// AssignmentStatusPublished means enrolled learners may view and submit.
	AssignmentStatusPublished = "published"
	// AssignmentStatusClosed means the assignment no longer accepts submissions.
	AssignmentStatusClosed = "closed"
)

// Assignment represents graded work attached to a course. When late
// submissions are allowed the late deadline must be strictly after the due
// date; the validation layer enforces this on every draft and publish pass.
type Assignment struct {
	ID                     string     `gorm:"primaryKey;size:36" json:"id"`
	CourseID               string     `gorm:"size:36;not null;index" json:"course_id"`
	Title                  string     `gorm:"size:200;not null" json:"title"`
	Description            string     `gorm:"type:text" json:"description"`
	DueDate                time.Time  `gorm:"not null" json:"due_date"`
	AllowLateSubmission    bool       `gorm:"not null;default:false" json:"allow_late_submission"`
	LateSubmissionDeadline *time.Time `json:"late_submission_deadline"`
	Status                 string     `gorm:"size:16;not null;default:draft" json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsPastDue reports whether the on-time window has closed at the reference instant.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// LateWindowClosed reports whether the late window, if any, has also closed.
func (a Assignment) LateWindowClosed(reference time.Time) bool {
	return a.LateSubmissionDeadline != nil && reference.After(*a.LateSubmissionDeadline)
}
