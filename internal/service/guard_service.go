package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
)

// Principal identifies the authenticated account behind a request.
type Principal struct {
	ID string
}

// IdentityProvider resolves the caller's identity from ambient session state.
// No session is reported as an empty id; an error means the lookup itself
// failed and is surfaced as ErrIdentityLookup, not as "not logged in".
type IdentityProvider interface {
	CurrentPrincipal(ctx context.Context) (string, error)
}

// AuthContext bundles a resolved principal with its profile.
type AuthContext struct {
	Principal Principal
	Profile   models.Profile
}

// CourseContext additionally carries the course the principal owns.
type CourseContext struct {
	AuthContext
	Course models.Course
}

// GuardService is the single entry point for authorization checks. Lifecycle
// services compose on top of it; each guard performs exactly the lookups its
// contract names and nothing more.
type GuardService struct {
	identity    IdentityProvider
	profiles    repository.ProfileRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	logger      zerolog.Logger
}

// NewGuardService constructs the guard layer.
func NewGuardService(identity IdentityProvider, profiles repository.ProfileRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, logger zerolog.Logger) *GuardService {
	return &GuardService{
		identity:    identity,
		profiles:    profiles,
		courses:     courses,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "guard_service").Logger(),
	}
}

// RequireUser resolves the current principal or fails with ErrUnauthorized.
func (g *GuardService) RequireUser(ctx context.Context) (Principal, error) {
	principalID, err := g.identity.CurrentPrincipal(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to resolve principal")
		return Principal{}, fmt.Errorf("%w: %v", ErrIdentityLookup, err)
	}

	if principalID == "" {
		return Principal{}, ErrUnauthorized
	}

	return Principal{ID: principalID}, nil
}

// RequireRole resolves the principal and loads its profile, failing with
// ErrForbidden when the profile is absent, not onboarded, or carries a
// different role. One identity check, one profile lookup, never more.
func (g *GuardService) RequireRole(ctx context.Context, role models.Role) (AuthContext, error) {
	principal, err := g.RequireUser(ctx)
	if err != nil {
		return AuthContext{}, err
	}

	profile, err := g.profiles.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthContext{}, ErrForbidden
		}
		g.logger.Error().Err(err).Str("principal_id", principal.ID).Msg("failed to load profile")
		return AuthContext{}, fmt.Errorf("%w: %v", ErrProfileLookup, err)
	}

	if !profile.HasRole(role) {
		return AuthContext{}, ErrForbidden
	}

	return AuthContext{Principal: principal, Profile: profile}, nil
}

// RequireCourseOwnership verifies the acting instructor owns the course.
// Existence is checked before ownership: a missing course is NotFound, a
// course owned by someone else is Forbidden.
func (g *GuardService) RequireCourseOwnership(ctx context.Context, courseID string) (CourseContext, error) {
	auth, err := g.RequireRole(ctx, models.RoleInstructor)
	if err != nil {
		return CourseContext{}, err
	}

	course, err := g.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseContext{}, ErrCourseNotFound
		}
		return CourseContext{}, persistence("courses.get", err)
	}

	if course.InstructorID != auth.Principal.ID {
		return CourseContext{}, ErrForbidden
	}

	return CourseContext{AuthContext: auth, Course: course}, nil
}

// RequireEnrollment verifies the learner is enrolled in the course. A missing
// enrollment row fails with ErrNotEnrolled (a permission failure, not
// NotFound) because the course itself may be publicly visible.
func (g *GuardService) RequireEnrollment(ctx context.Context, courseID, learnerID string) (models.Enrollment, error) {
	enrollment, err := g.enrollments.GetByCourseAndLearner(ctx, courseID, learnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrNotEnrolled
		}
		return models.Enrollment{}, persistence("enrollments.get", err)
	}

	return enrollment, nil
}
