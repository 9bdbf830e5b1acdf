package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/observability"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// SubmissionService handles learner hand-ins and the read views over them.
type SubmissionService interface {
	Submit(ctx context.Context, courseID, assignmentID string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	GetOwn(ctx context.Context, courseID, assignmentID string) (dto.SubmissionResponse, error)
	ListOwn(ctx context.Context) ([]dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, courseID, assignmentID string) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	guards      *GuardService
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	viewCache   *ViewCache
	events      EventPublisher
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds the submission service with a real clock.
func NewSubmissionService(guards *GuardService, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, viewCache *ViewCache, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) SubmissionService {
	return newSubmissionService(guards, submissions, assignments, validate, viewCache, events, activity, logger, time.Now)
}

func newSubmissionService(guards *GuardService, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, viewCache *ViewCache, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger, now func() time.Time) SubmissionService {
	return &submissionService{
		guards:      guards,
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		viewCache:   viewCache,
		events:      events,
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         now,
	}
}

// Submit records a learner's hand-in for a published assignment. The checks
// run in a fixed order: role, enrollment, assignment status, payload, then
// the acceptance window. The unique index on (assignment, learner) is the
// final arbiter against concurrent duplicate submissions.
func (s *submissionService) Submit(ctx context.Context, courseID, assignmentID string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.guards.RequireEnrollment(ctx, courseID, auth.Principal.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, persistence("assignments.get", err)
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.SubmissionResponse{}, ErrAssignmentNotOpen
	}

	payload.Content = strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	payload.FileURL = strings.TrimSpace(payload.FileURL)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, newValidationError(err)
	}

	submittedAt := s.now().UTC()
	isLate := false
	if assignment.IsPastDue(submittedAt) {
		if !assignment.AllowLateSubmission {
			return dto.SubmissionResponse{}, ErrPastDue
		}
		if assignment.LateWindowClosed(submittedAt) {
			return dto.SubmissionResponse{}, ErrLateWindowClosed
		}
		isLate = true
	}

	submission := models.Submission{
		ID:           uuid.NewString(),
		AssignmentID: assignment.ID,
		LearnerID:    auth.Principal.ID,
		Content:      payload.Content,
		FileURL:      payload.FileURL,
		SubmittedAt:  submittedAt,
		IsLate:       isLate,
		Status:       models.SubmissionStatusSubmitted,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		}
		return dto.SubmissionResponse{}, persistence("submissions.insert", err)
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    auth.Principal.ID,
			ActorRole:  string(models.RoleLearner),
			Action:     "submission.created",
			EntityType: "submission",
			EntityID:   submission.ID,
			Metadata: map[string]interface{}{
				"assignment_id": assignment.ID,
				"is_late":       isLate,
			},
		})
	}

	s.events.Publish(ctx, "submission.created", map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": assignment.ID,
		"learner_id":    auth.Principal.ID,
		"is_late":       isLate,
	})
	s.viewCache.Invalidate(ctx, learnerDashboardKey(auth.Principal.ID))
	observability.Submissions().WithLabelValues(strconv.FormatBool(isLate)).Inc()
	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("assignment_id", assignment.ID).
		Bool("is_late", isLate).
		Msg("submission recorded")

	return dto.NewSubmissionResponse(submission), nil
}

// GetOwn returns the caller's submission for an assignment, grade included
// when one exists.
func (s *submissionService) GetOwn(ctx context.Context, courseID, assignmentID string) (dto.SubmissionResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.guards.RequireEnrollment(ctx, courseID, auth.Principal.ID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, persistence("assignments.get", err)
	}

	submission, err := s.submissions.GetByAssignmentAndLearner(ctx, assignmentID, auth.Principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, persistence("submissions.get", err)
	}

	return dto.NewSubmissionResponse(submission), nil
}

// ListOwn returns every submission the learner has made, newest first, with
// the owning assignment attached for display.
func (s *submissionService) ListOwn(ctx context.Context) ([]dto.SubmissionResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByLearner(ctx, auth.Principal.ID)
	if err != nil {
		return nil, persistence("submissions.list", err)
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// ListForAssignment returns every submission for an assignment in an owned
// course. This is the grading queue view.
func (s *submissionService) ListForAssignment(ctx context.Context, courseID, assignmentID string) ([]dto.SubmissionResponse, error) {
	if _, err := s.guards.RequireCourseOwnership(ctx, courseID); err != nil {
		return nil, err
	}

	if _, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, persistence("assignments.get", err)
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, persistence("submissions.list", err)
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
