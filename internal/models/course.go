package models

import "time"

// Course lifecycle states.
const (
	// CourseStatusDraft means the course is editable and invisible to learners.
	CourseStatusDraft = "draft"
	// CourseStatusPublished means the course appears in the public catalog.
	CourseStatusPublished = "published"
	// CourseStatusArchived is terminal; archived courses are kept for record only.
	CourseStatusArchived = "archived"
)

// Course represents a unit of instruction owned by exactly one instructor.
type Course struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	InstructorID string       `gorm:"size:36;not null;index" json:"instructor_id"`
	Title        string       `gorm:"size:200;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	ThumbnailURL string       `gorm:"size:512" json:"thumbnail_url"`
	Status       string       `gorm:"size:16;not null;default:draft" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Assignments  []Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignments,omitempty"`
}

// IsPublished reports whether the course is visible to learners.
func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}
