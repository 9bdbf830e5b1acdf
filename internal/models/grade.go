package models

import "time"

// Grade records an instructor's evaluation of a submission. The unique index
// on SubmissionID keeps one grade per submission even when two first-time
// grading calls race; repeated grading updates the row in place.
// GradedByName is captured at grading time and never refreshed.
type Grade struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SubmissionID string    `gorm:"size:36;not null;uniqueIndex" json:"submission_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     string    `gorm:"size:36;not null" json:"graded_by"`
	GradedByName string    `gorm:"size:100;not null" json:"graded_by_name"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
