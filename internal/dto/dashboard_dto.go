package dto

import "time"

// CourseProgress summarizes a learner's submission state within one course.
type CourseProgress struct {
	CourseID             string  `json:"course_id"`
	CourseTitle          string  `json:"course_title"`
	PublishedAssignments int     `json:"published_assignments"`
	Submitted            int     `json:"submitted"`
	Graded               int     `json:"graded"`
	AverageScore         float64 `json:"average_score"`
}

// UpcomingAssignment lists a published assignment the learner has not submitted yet.
type UpcomingAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	CourseID     string    `json:"course_id"`
	CourseTitle  string    `json:"course_title"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
	AllowLate    bool      `json:"allow_late"`
}

// FeedbackItem surfaces recently graded work on the learner dashboard.
type FeedbackItem struct {
	SubmissionID    string    `json:"submission_id"`
	AssignmentTitle string    `json:"assignment_title"`
	Score           float64   `json:"score"`
	Feedback        string    `json:"feedback"`
	GradedByName    string    `json:"graded_by_name"`
	GradedAt        time.Time `json:"graded_at"`
}

// LearnerDashboardResponse aggregates a learner's standing across enrolled courses.
type LearnerDashboardResponse struct {
	Progress            []CourseProgress     `json:"progress"`
	UpcomingAssignments []UpcomingAssignment `json:"upcoming_assignments"`
	RecentFeedback      []FeedbackItem       `json:"recent_feedback"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// CourseOverview summarizes one course on the instructor dashboard.
type CourseOverview struct {
	CourseID             string `json:"course_id"`
	Title                string `json:"title"`
	Status               string `json:"status"`
	Enrollments          int64  `json:"enrollments"`
	PublishedAssignments int64  `json:"published_assignments"`
	UngradedSubmissions  int64  `json:"ungraded_submissions"`
}

// InstructorDashboardResponse aggregates the instructor's courses.
type InstructorDashboardResponse struct {
	Courses     []CourseOverview `json:"courses"`
	GeneratedAt time.Time        `json:"generated_at"`
}
