package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// CourseService exposes the instructor-facing course lifecycle and the public
// catalog views.
type CourseService interface {
	CreateDraft(ctx context.Context, payload dto.CourseDraftRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, courseID string, payload dto.CourseDraftRequest) (dto.CourseResponse, error)
	Publish(ctx context.Context, courseID string) (dto.CourseResponse, error)
	ListOwn(ctx context.Context) ([]dto.CourseResponse, error)
	GetOwn(ctx context.Context, courseID string) (dto.CourseResponse, error)
	ListCatalog(ctx context.Context) ([]dto.CourseResponse, error)
	GetCatalogCourse(ctx context.Context, courseID string) (dto.CourseDetailResponse, error)
}

type courseService struct {
	guards    *GuardService
	repo      repository.CourseRepository
	validator *validator.Validate
	viewCache *ViewCache
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCourseService builds the course lifecycle service.
func NewCourseService(guards *GuardService, repo repository.CourseRepository, validate *validator.Validate, viewCache *ViewCache, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		guards:    guards,
		repo:      repo,
		validator: validate,
		viewCache: viewCache,
		activity:  activity,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

// CreateDraft validates the draft schema and inserts the course in draft
// status. Validation failures never reach the store.
func (s *courseService) CreateDraft(ctx context.Context, payload dto.CourseDraftRequest) (dto.CourseResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleInstructor)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	payload = trimCourseDraft(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, newValidationError(err)
	}

	course := models.Course{
		ID:           uuid.NewString(),
		InstructorID: auth.Principal.ID,
		Title:        payload.Title,
		Description:  payload.Description,
		ThumbnailURL: payload.ThumbnailURL,
		Status:       models.CourseStatusDraft,
	}

	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, persistence("courses.insert", err)
	}

	s.viewCache.Invalidate(ctx, instructorCoursesKey(auth.Principal.ID))
	s.logger.Info().Str("course_id", course.ID).Str("instructor_id", auth.Principal.ID).Msg("course draft created")

	return dto.NewCourseResponse(course), nil
}

// Update re-validates with the draft schema and saves the editable fields.
// The status column is never touched here.
func (s *courseService) Update(ctx context.Context, courseID string, payload dto.CourseDraftRequest) (dto.CourseResponse, error) {
	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	payload = trimCourseDraft(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, newValidationError(err)
	}

	course := owned.Course
	course.Title = payload.Title
	course.Description = payload.Description
	course.ThumbnailURL = payload.ThumbnailURL

	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, persistence("courses.update", err)
	}

	s.viewCache.Invalidate(ctx,
		instructorCoursesKey(owned.Principal.ID),
		catalogCourseKey(course.ID),
	)
	s.logger.Info().Str("course_id", course.ID).Msg("course updated")

	return dto.NewCourseResponse(course), nil
}

// Publish re-validates the persisted fields against the stricter publish
// schema, then transitions draft to published with a single status write.
// Re-publishing an already published course succeeds without a write.
func (s *courseService) Publish(ctx context.Context, courseID string) (dto.CourseResponse, error) {
	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course := owned.Course
	check := dto.CoursePublishCheck{
		Title:        course.Title,
		Description:  course.Description,
		ThumbnailURL: course.ThumbnailURL,
	}
	if err := s.validator.Struct(check); err != nil {
		return dto.CourseResponse{}, newValidationError(err)
	}

	if course.IsPublished() {
		s.logger.Debug().Str("course_id", course.ID).Msg("course already published")
		return dto.NewCourseResponse(course), nil
	}

	if course.Status == models.CourseStatusArchived {
		return dto.CourseResponse{}, ErrForbidden
	}

	if err := s.repo.UpdateStatus(ctx, course.ID, models.CourseStatusPublished); err != nil {
		return dto.CourseResponse{}, persistence("courses.publish", err)
	}
	course.Status = models.CourseStatusPublished

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    owned.Principal.ID,
			ActorRole:  string(models.RoleInstructor),
			Action:     "course.published",
			EntityType: "course",
			EntityID:   course.ID,
			Metadata:   map[string]interface{}{"title": course.Title},
		})
	}

	s.viewCache.Invalidate(ctx,
		catalogKey(),
		catalogCourseKey(course.ID),
		instructorCoursesKey(owned.Principal.ID),
	)
	s.logger.Info().Str("course_id", course.ID).Msg("course published")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) ListOwn(ctx context.Context) ([]dto.CourseResponse, error) {
	auth, err := s.guards.RequireRole(ctx, models.RoleInstructor)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.ListByInstructor(ctx, auth.Principal.ID)
	if err != nil {
		return nil, persistence("courses.list", err)
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) GetOwn(ctx context.Context, courseID string) (dto.CourseResponse, error) {
	owned, err := s.guards.RequireCourseOwnership(ctx, courseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(owned.Course), nil
}

// ListCatalog returns published courses. The catalog is public.
func (s *courseService) ListCatalog(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, persistence("courses.catalog", err)
	}

	return dto.NewCourseResponseSlice(courses), nil
}

// GetCatalogCourse returns one published course with its published
// assignments. Draft and archived courses stay invisible here.
func (s *courseService) GetCatalogCourse(ctx context.Context, courseID string) (dto.CourseDetailResponse, error) {
	course, err := s.repo.GetPublished(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseDetailResponse{}, ErrCourseNotFound
		}
		return dto.CourseDetailResponse{}, persistence("courses.catalog_detail", err)
	}

	return dto.CourseDetailResponse{
		CourseResponse: dto.NewCourseResponse(course),
		Assignments:    dto.NewAssignmentResponseSlice(course.Assignments),
	}, nil
}

func trimCourseDraft(payload dto.CourseDraftRequest) dto.CourseDraftRequest {
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Description = strings.TrimSpace(payload.Description)
	payload.ThumbnailURL = strings.TrimSpace(payload.ThumbnailURL)

	return payload
}

func catalogKey() string {
	return "views:catalog"
}

func catalogCourseKey(courseID string) string {
	return "views:catalog:course:" + courseID
}

func instructorCoursesKey(instructorID string) string {
	return "views:instructor:courses:" + instructorID
}

func learnerDashboardKey(learnerID string) string {
	return "views:learner:dashboard:" + learnerID
}
