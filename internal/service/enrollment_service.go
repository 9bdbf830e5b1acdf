package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// EnrollmentService manages the learner-course membership that every
// submission-side permission check hangs off.
type EnrollmentService interface {
	Enroll(ctx context.Context, courseID string) (dto.EnrollmentResponse, error)
	Withdraw(ctx context.Context, courseID string) error
	ListOwn(ctx context.Context) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	guards      *GuardService
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	viewCache   *ViewCache
	events      EventPublisher
	logger      zerolog.Logger
}

// NewEnrollmentService builds the enrollment service.
func NewEnrollmentService(guards *GuardService, enrollments repository.EnrollmentRepository, courses repository.CourseRepository, viewCache *ViewCache, events EventPublisher, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		guards:      guards,
		enrollments: enrollments,
		courses:     courses,
		viewCache:   viewCache,
		events:      events,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// Enroll joins the learner to a published course. Only published courses
// accept enrollments; the unique index on (course, learner) rejects
// duplicates regardless of request interleaving.
func (s *enrollmentService) Enroll(ctx context.Context, courseID string) (dto.EnrollmentResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, persistence("courses.get", err)
	}

	if !course.IsPublished() {
		return dto.EnrollmentResponse{}, ErrCourseNotFound
	}

	enrollment := models.Enrollment{
		ID:        uuid.NewString(),
		CourseID:  course.ID,
		LearnerID: auth.Principal.ID,
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, persistence("enrollments.insert", err)
	}
	enrollment.Course = course

	s.events.Publish(ctx, "enrollment.created", map[string]interface{}{
		"course_id":  course.ID,
		"learner_id": auth.Principal.ID,
	})
	s.viewCache.Invalidate(ctx, learnerDashboardKey(auth.Principal.ID))
	s.logger.Info().Str("course_id", course.ID).Str("learner_id", auth.Principal.ID).Msg("learner enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

// Withdraw removes the learner from a course. Withdrawing when not enrolled
// fails with ErrNotEnrolled.
func (s *enrollmentService) Withdraw(ctx context.Context, courseID string) error {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return err
	}

	if err := s.enrollments.Delete(ctx, courseID, auth.Principal.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return persistence("enrollments.delete", err)
	}

	s.events.Publish(ctx, "enrollment.withdrawn", map[string]interface{}{
		"course_id":  courseID,
		"learner_id": auth.Principal.ID,
	})
	s.viewCache.Invalidate(ctx, learnerDashboardKey(auth.Principal.ID))
	s.logger.Info().Str("course_id", courseID).Str("learner_id", auth.Principal.ID).Msg("learner withdrew")

	return nil
}

// ListOwn returns the learner's enrollments with the course attached.
func (s *enrollmentService) ListOwn(ctx context.Context) ([]dto.EnrollmentResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleLearner)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByLearner(ctx, auth.Principal.ID)
	if err != nil {
		return nil, persistence("enrollments.list", err)
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}
