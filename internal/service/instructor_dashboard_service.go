package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// InstructorDashboardService summarizes each of the instructor's courses with
// enrollment and grading-queue counts.
type InstructorDashboardService interface {
	Get(ctx context.Context) (dto.InstructorDashboardResponse, error)
}

type instructorDashboardService struct {
	guards      *GuardService
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewInstructorDashboardService builds the instructor dashboard aggregator.
func NewInstructorDashboardService(guards *GuardService, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) InstructorDashboardService {
	return &instructorDashboardService{
		guards:      guards,
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "instructor_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *instructorDashboardService) Get(ctx context.Context) (dto.InstructorDashboardResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleInstructor)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	courses, err := s.courses.ListByInstructor(ctx, auth.Principal.ID)
	if err != nil {
		return dto.InstructorDashboardResponse{}, persistence("courses.list", err)
	}

	overviews := make([]dto.CourseOverview, 0, len(courses))
	for _, course := range courses {
		enrolled, err := s.enrollments.CountByCourse(ctx, course.ID)
		if err != nil {
			return dto.InstructorDashboardResponse{}, persistence("enrollments.count", err)
		}

		published, err := s.assignments.CountByCourseAndStatus(ctx, course.ID, models.AssignmentStatusPublished)
		if err != nil {
			return dto.InstructorDashboardResponse{}, persistence("assignments.count", err)
		}

		ungraded, err := s.submissions.CountUngradedByCourse(ctx, course.ID)
		if err != nil {
			return dto.InstructorDashboardResponse{}, persistence("submissions.count", err)
		}

		overviews = append(overviews, dto.CourseOverview{
			CourseID:             course.ID,
			Title:                course.Title,
			Status:               string(course.Status),
			Enrollments:          enrolled,
			PublishedAssignments: published,
			UngradedSubmissions:  ungraded,
		})
	}

	return dto.InstructorDashboardResponse{
		Courses:     overviews,
		GeneratedAt: s.now().UTC(),
	}, nil
}
