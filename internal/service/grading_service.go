package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/observability"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// GradingService records instructor evaluations of submissions.
type GradingService interface {
	Grade(ctx context.Context, courseID, assignmentID, submissionID string, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	guards      *GuardService
	grades      repository.GradeRepository
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	viewCache   *ViewCache
	events      EventPublisher
	activity    ActivityRecorder
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService builds the grading service with a real clock.
func NewGradingService(guards *GuardService, grades repository.GradeRepository, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, viewCache *ViewCache, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) GradingService {
	return newGradingService(guards, grades, submissions, assignments, validate, viewCache, events, activity, logger, time.Now)
}

func newGradingService(guards *GuardService, grades repository.GradeRepository, submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, viewCache *ViewCache, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger, now func() time.Time) GradingService {
	return &gradingService{
		guards:      guards,
		grades:      grades,
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		viewCache:   viewCache,
		events:      events,
		activity:    activity,
		tracer:      otel.Tracer("lms-api/grading"),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         now,
	}
}

// Grade records or revises the evaluation for one submission. The grade row
// is upserted by submission id; a revision overwrites score, feedback and the
// grader id, while the display name stays as captured at first grading
// rather than a live join. After the grade is persisted the
// submission status is synced best effort: a failure there is logged and the
// grade still stands.
func (s *gradingService) Grade(ctx context.Context, courseID, assignmentID, submissionID string, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade", trace.WithAttributes(
		attribute.String("course.id", courseID),
		attribute.String("assignment.id", assignmentID),
		attribute.String("submission.id", submissionID),
	))
	defer span.End()

	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	payload.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, newValidationError(err)
	}

	if _, err := s.assignments.GetByCourseAndID(ctx, courseID, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, persistence("assignments.get", err)
	}

	submission, err := s.submissions.GetByAssignmentAndID(ctx, assignmentID, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, persistence("submissions.get", err)
	}

	grade, err := s.upsertGrade(ctx, submission.ID, payload, owned)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	status := models.SubmissionStatusGraded
	if payload.RequestResubmit {
		status = models.SubmissionStatusResubmitRequested
	}

	// Status sync is secondary to the grade itself. The grade is already
	// durable, so a failed sync degrades the view, not the record.
	if err := s.submissions.UpdateStatus(ctx, submission.ID, status); err != nil {
		s.logger.Warn().Err(err).
			Str("submission_id", submission.ID).
			Str("status", string(status)).
			Msg("failed to sync submission status after grading")
	} else {
		submission.Status = status
	}
	submission.Grade = &grade

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    owned.Principal.ID,
			ActorRole:  string(models.RoleInstructor),
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   submission.ID,
			Metadata: map[string]interface{}{
				"score":         grade.Score,
				"resubmit":      payload.RequestResubmit,
				"assignment_id": assignmentID,
			},
		})
	}

	s.events.Publish(ctx, "submission.graded", map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": assignmentID,
		"learner_id":    submission.LearnerID,
		"score":         grade.Score,
		"resubmit":      payload.RequestResubmit,
	})
	s.viewCache.Invalidate(ctx, learnerDashboardKey(submission.LearnerID))
	observability.Grades().WithLabelValues(string(status)).Inc()
	s.logger.Info().
		Str("submission_id", submission.ID).
		Float64("score", grade.Score).
		Bool("resubmit", payload.RequestResubmit).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// upsertGrade looks the grade up by submission and inserts or updates it. A
// concurrent first grade can race the lookup; the unique index on
// submission_id turns the loser's insert into a duplicate error, which is
// resolved by re-fetching and updating instead.
func (s *gradingService) upsertGrade(ctx context.Context, submissionID string, payload dto.GradeRequest, owned CourseContext) (models.Grade, error) {
	ctx, span := s.tracer.Start(ctx, "grading.upsert")
	defer span.End()

	gradedAt := s.now().UTC()

	existing, err := s.grades.GetBySubmission(ctx, submissionID)
	if err == nil {
		existing.Score = *payload.Score
		existing.Feedback = payload.Feedback
		existing.GradedBy = owned.Principal.ID
		existing.GradedAt = gradedAt
		if err := s.grades.Update(ctx, &existing); err != nil {
			return models.Grade{}, persistence("grades.update", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Grade{}, persistence("grades.get", err)
	}

	grade := models.Grade{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		Score:        *payload.Score,
		Feedback:     payload.Feedback,
		GradedBy:     owned.Principal.ID,
		GradedByName: owned.Profile.Name,
		GradedAt:     gradedAt,
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Grade{}, persistence("grades.insert", err)
		}

		existing, err := s.grades.GetBySubmission(ctx, submissionID)
		if err != nil {
			return models.Grade{}, persistence("grades.get", err)
		}
		existing.Score = *payload.Score
		existing.Feedback = payload.Feedback
		existing.GradedBy = owned.Principal.ID
		existing.GradedAt = gradedAt
		if err := s.grades.Update(ctx, &existing); err != nil {
			return models.Grade{}, persistence("grades.update", err)
		}
		return existing, nil
	}

	return grade, nil
}
