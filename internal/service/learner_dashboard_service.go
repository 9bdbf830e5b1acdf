package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

const recentFeedbackLimit = 5

// LearnerDashboardService aggregates a learner's progress, upcoming work and
// recent feedback across every enrolled course. The rendered view is cached;
// mutating operations elsewhere invalidate it by key.
type LearnerDashboardService interface {
	Get(ctx context.Context) (dto.LearnerDashboardResponse, error)
}

type learnerDashboardService struct {
	guards      *GuardService
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	viewCache   *ViewCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLearnerDashboardService builds the learner dashboard aggregator.
func NewLearnerDashboardService(guards *GuardService, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, viewCache *ViewCache, logger zerolog.Logger) LearnerDashboardService {
	return &learnerDashboardService{
		guards:      guards,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		viewCache:   viewCache,
		logger:      logger.With().Str("component", "learner_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *learnerDashboardService) Get(ctx context.Context) (dto.LearnerDashboardResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return dto.LearnerDashboardResponse{}, err
	}

	cacheKey := learnerDashboardKey(auth.Principal.ID)

	var cached dto.LearnerDashboardResponse
	if s.viewCache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	dashboard, err := s.build(ctx, auth.Principal.ID)
	if err != nil {
		return dto.LearnerDashboardResponse{}, err
	}

	s.viewCache.Set(ctx, cacheKey, dashboard)

	return dashboard, nil
}

func (s *learnerDashboardService) build(ctx context.Context, learnerID string) (dto.LearnerDashboardResponse, error) {
	enrollments, err := s.enrollments.ListByLearner(ctx, learnerID)
	if err != nil {
		return dto.LearnerDashboardResponse{}, persistence("enrollments.list", err)
	}

	submissions, err := s.submissions.ListByLearner(ctx, learnerID)
	if err != nil {
		return dto.LearnerDashboardResponse{}, persistence("submissions.list", err)
	}

	submittedByAssignment := make(map[string]models.Submission, len(submissions))
	for _, submission := range submissions {
		submittedByAssignment[submission.AssignmentID] = submission
	}

	progress := make([]dto.CourseProgress, 0, len(enrollments))
	upcoming := make([]dto.UpcomingAssignment, 0)

	for _, enrollment := range enrollments {
		assignments, err := s.assignments.ListByCourseAndStatus(ctx, enrollment.CourseID, models.AssignmentStatusPublished)
		if err != nil {
			return dto.LearnerDashboardResponse{}, persistence("assignments.list", err)
		}

		entry := dto.CourseProgress{
			CourseID:             enrollment.CourseID,
			CourseTitle:          enrollment.Course.Title,
			PublishedAssignments: len(assignments),
		}

		var scoreTotal float64
		for _, assignment := range assignments {
			submission, ok := submittedByAssignment[assignment.ID]
			if !ok {
				upcoming = append(upcoming, dto.UpcomingAssignment{
					AssignmentID: assignment.ID,
					CourseID:     enrollment.CourseID,
					CourseTitle:  enrollment.Course.Title,
					Title:        assignment.Title,
					DueDate:      assignment.DueDate,
					AllowLate:    assignment.AllowLateSubmission,
				})
				continue
			}

			entry.Submitted++
			if submission.IsGraded() && submission.Grade != nil {
				entry.Graded++
				scoreTotal += submission.Grade.Score
			}
		}

		if entry.Graded > 0 {
			entry.AverageScore = scoreTotal / float64(entry.Graded)
		}

		progress = append(progress, entry)
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})

	return dto.LearnerDashboardResponse{
		Progress:            progress,
		UpcomingAssignments: upcoming,
		RecentFeedback:      recentFeedback(submissions),
		GeneratedAt:         s.now().UTC(),
	}, nil
}

// recentFeedback extracts the newest graded submissions, capped for display.
func recentFeedback(submissions []models.Submission) []dto.FeedbackItem {
	graded := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.IsGraded() && submission.Grade != nil {
			graded = append(graded, submission)
		}
	}

	sort.Slice(graded, func(i, j int) bool {
		return graded[i].Grade.GradedAt.After(graded[j].Grade.GradedAt)
	})
	if len(graded) > recentFeedbackLimit {
		graded = graded[:recentFeedbackLimit]
	}

	feedback := make([]dto.FeedbackItem, 0, len(graded))
	for _, submission := range graded {
		feedback = append(feedback, dto.FeedbackItem{
			SubmissionID:    submission.ID,
			AssignmentTitle: submission.Assignment.Title,
			Score:           submission.Grade.Score,
			Feedback:        submission.Grade.Feedback,
			GradedByName:    submission.Grade.GradedByName,
			GradedAt:        submission.Grade.GradedAt,
		})
	}

	return feedback
}
