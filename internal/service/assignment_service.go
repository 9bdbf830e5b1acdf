package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// AssignmentService manages the assignment lifecycle inside a course.
// Every operation resolves the assignment through its course so that an
// assignment id from another course behaves exactly like a missing one.
type AssignmentService interface {
	CreateDraft(ctx context.Context, courseID string, payload dto.AssignmentDraftRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, courseID, assignmentID string, payload dto.AssignmentDraftRequest) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error)
	Close(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error)
	ListForCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error)
	GetForCourse(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	guards    *GuardService
	repo      repository.AssignmentRepository
	validator *validator.Validate
	viewCache *ViewCache
	events    EventPublisher
	logger    zerolog.Logger
}

// NewAssignmentService builds the assignment lifecycle service.
func NewAssignmentService(guards *GuardService, repo repository.AssignmentRepository, validate *validator.Validate, viewCache *ViewCache, events EventPublisher, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		guards:    guards,
		repo:      repo,
		validator: validate,
		viewCache: viewCache,
		events:    events,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

// assignmentSchedule carries the parsed temporal fields of a draft payload.
type assignmentSchedule struct {
	dueDate      time.Time
	lateDeadline *time.Time
	allowLate    bool
}

// parseSchedule validates the temporal part of an assignment payload. The
// late deadline is only meaningful when late submissions are allowed, and it
// must fall strictly after the due date.
func parseSchedule(payload dto.AssignmentDraftRequest) (assignmentSchedule, error) {
	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return assignmentSchedule{}, singleFieldError("dueDate", "must be a valid RFC 3339 timestamp")
	}

	schedule := assignmentSchedule{dueDate: dueDate.UTC(), allowLate: payload.AllowLateSubmission}

	if payload.LateSubmissionDeadline != "" {
		lateDeadline, err := time.Parse(time.RFC3339, payload.LateSubmissionDeadline)
		if err != nil {
			return assignmentSchedule{}, singleFieldError("lateSubmissionDeadline", "must be a valid RFC 3339 timestamp")
		}
		lateUTC := lateDeadline.UTC()
		schedule.lateDeadline = &lateUTC
	}

	if err := checkLateWindow(schedule.dueDate, schedule.allowLate, schedule.lateDeadline); err != nil {
		return assignmentSchedule{}, err
	}

	return schedule, nil
}

// checkLateWindow is the cross-field schedule rule shared by the draft and
// publish schemas.
func checkLateWindow(dueDate time.Time, allowLate bool, lateDeadline *time.Time) error {
	if !allowLate {
		if lateDeadline != nil {
			return singleFieldError("lateSubmissionDeadline", "requires allowLateSubmission to be enabled")
		}
		return nil
	}

	if lateDeadline == nil {
		return singleFieldError("lateSubmissionDeadline", "is required when late submissions are allowed")
	}
	if !lateDeadline.After(dueDate) {
		return singleFieldError("lateSubmissionDeadline", "must be after the due date")
	}

	return nil
}

// CreateDraft validates the draft schema and inserts the assignment in draft
// status under the owned course.
func (s *assignmentService) CreateDraft(ctx context.Context, courseID string, payload dto.AssignmentDraftRequest) (dto.AssignmentResponse, error) {
	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	payload = trimAssignmentDraft(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, newValidationError(err)
	}

	schedule, err := parseSchedule(payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		ID:                     uuid.NewString(),
		CourseID:               owned.Course.ID,
		Title:                  payload.Title,
		Description:            payload.Description,
		DueDate:                schedule.dueDate,
		AllowLateSubmission:    schedule.allowLate,
		LateSubmissionDeadline: schedule.lateDeadline,
		Status:                 models.AssignmentStatusDraft,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, persistence("assignments.insert", err)
	}

	s.logger.Info().Str("assignment_id", assignment.ID).Str("course_id", courseID).Msg("assignment draft created")

	return dto.NewAssignmentResponse(assignment), nil
}

// Update re-validates the draft schema and saves the editable fields without
// touching the status column.
func (s *assignmentService) Update(ctx context.Context, courseID, assignmentID string, payload dto.AssignmentDraftRequest) (dto.AssignmentResponse, error) {
	_, assignment, err := s.ownedAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	payload = trimAssignmentDraft(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, newValidationError(err)
	}

	schedule, err := parseSchedule(payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Title = payload.Title
	assignment.Description = payload.Description
	assignment.DueDate = schedule.dueDate
	assignment.AllowLateSubmission = schedule.allowLate
	assignment.LateSubmissionDeadline = schedule.lateDeadline

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, persistence("assignments.update", err)
	}

	s.viewCache.Invalidate(ctx, catalogCourseKey(courseID))
	s.logger.Info().Str("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

// Publish re-validates the persisted fields against the publish schema,
// including the late-window rule, then moves draft to published. Re-publishing
// succeeds without a write; a closed assignment cannot reopen.
func (s *assignmentService) Publish(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error) {
	_, assignment, err := s.ownedAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	check := dto.AssignmentPublishCheck{
		Title:                  assignment.Title,
		Description:            assignment.Description,
		DueDate:                assignment.DueDate,
		AllowLateSubmission:    assignment.AllowLateSubmission,
		LateSubmissionDeadline: assignment.LateSubmissionDeadline,
	}
	if err := s.validator.Struct(check); err != nil {
		return dto.AssignmentResponse{}, newValidationError(err)
	}
	if err := checkLateWindow(check.DueDate, check.AllowLateSubmission, check.LateSubmissionDeadline); err != nil {
		return dto.AssignmentResponse{}, err
	}

	switch assignment.Status {
	case models.AssignmentStatusPublished:
		s.logger.Debug().Str("assignment_id", assignment.ID).Msg("assignment already published")
		return dto.NewAssignmentResponse(assignment), nil
	case models.AssignmentStatusClosed:
		return dto.AssignmentResponse{}, ErrForbidden
	}

	if err := s.repo.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusPublished); err != nil {
		return dto.AssignmentResponse{}, persistence("assignments.publish", err)
	}
	assignment.Status = models.AssignmentStatusPublished

	s.events.Publish(ctx, "assignment.published", map[string]interface{}{
		"assignment_id": assignment.ID,
		"course_id":     courseID,
		"due_date":      assignment.DueDate,
	})
	s.viewCache.Invalidate(ctx, catalogCourseKey(courseID))
	s.logger.Info().Str("assignment_id", assignment.ID).Str("course_id", courseID).Msg("assignment published")

	return dto.NewAssignmentResponse(assignment), nil
}

// Close moves a published assignment to closed. Closing an already closed
// assignment succeeds without a write; a draft cannot be closed.
func (s *assignmentService) Close(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error) {
	_, assignment, err := s.ownedAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	switch assignment.Status {
	case models.AssignmentStatusClosed:
		return dto.NewAssignmentResponse(assignment), nil
	case models.AssignmentStatusDraft:
		return dto.AssignmentResponse{}, ErrForbidden
	}

	if err := s.repo.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusClosed); err != nil {
		return dto.AssignmentResponse{}, persistence("assignments.close", err)
	}
	assignment.Status = models.AssignmentStatusClosed

	s.events.Publish(ctx, "assignment.closed", map[string]interface{}{
		"assignment_id": assignment.ID,
		"course_id":     courseID,
	})
	s.viewCache.Invalidate(ctx, catalogCourseKey(courseID))
	s.logger.Info().Str("assignment_id", assignment.ID).Msg("assignment closed")

	return dto.NewAssignmentResponse(assignment), nil
}

// ListForCourse returns all assignments of an owned course, drafts included.
func (s *assignmentService) ListForCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.guards.RequireCourseOwnership(ctx, courseID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, persistence("assignments.list", err)
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) GetForCourse(ctx context.Context, courseID, assignmentID string) (dto.AssignmentResponse, error) {
	_, assignment, err := s.ownedAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// ownedAssignment resolves an assignment through the ownership guard. The
// course scope is part of the lookup, so a valid assignment id paired with
// the wrong course yields ErrAssignmentNotFound.
func (s *assignmentService) ownedAssignment(ctx context.Context, courseID, assignmentID string) (CourseContext, models.Assignment, error) {
	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return CourseContext{}, models.Assignment{}, err
	}

	assignment, err := s.repo.GetByCourseAndID(ctx, courseID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseContext{}, models.Assignment{}, ErrAssignmentNotFound
		}
		return CourseContext{}, models.Assignment{}, persistence("assignments.get", err)
	}

	return owned, assignment, nil
}

func trimAssignmentDraft(payload dto.AssignmentDraftRequest) dto.AssignmentDraftRequest {
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Description = strings.TrimSpace(payload.Description)
	payload.DueDate = strings.TrimSpace(payload.DueDate)
	payload.LateSubmissionDeadline = strings.TrimSpace(payload.LateSubmissionDeadline)

	return payload
}
