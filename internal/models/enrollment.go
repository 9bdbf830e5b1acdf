package models

import "time"

// Enrollment joins a learner to a course. The unique index keeps at most one
// active enrollment per (course, learner) pair.
type Enrollment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CourseID  string    `gorm:"size:36;not null;uniqueIndex:idx_enrollments_course_learner" json:"course_id"`
	LearnerID string    `gorm:"size:36;not null;uniqueIndex:idx_enrollments_course_learner" json:"learner_id"`
	CreatedAt time.Time `json:"created_at"`
	Course    Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course,omitempty"`
}
