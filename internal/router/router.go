package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edubridge-kr/lms-api/internal/config"
	"github.com/edubridge-kr/lms-api/internal/handler"
	"github.com/edubridge-kr/lms-api/internal/middleware"
	"github.com/edubridge-kr/lms-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	EnrollmentHandler *handler.EnrollmentHandler
	CatalogHandler    *handler.CatalogHandler
	ProfileHandler    *handler.ProfileHandler
	DashboardHandler  *handler.DashboardHandler
	UploadHandler     *handler.UploadHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public catalog
	if deps.CatalogHandler != nil {
		catalog := api.Group("/catalog")
		deps.CatalogHandler.Register(catalog)
	}

	// Instructor course management, assignments nested beneath
	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)

		if deps.AssignmentHandler != nil {
			assignments := courses.Group("/:courseId/assignments")
			deps.AssignmentHandler.Register(assignments)

			if deps.SubmissionHandler != nil {
				submissions := assignments.Group("/:assignmentId/submissions")
				deps.SubmissionHandler.Register(submissions)
			}
		}

		if deps.EnrollmentHandler != nil {
			deps.EnrollmentHandler.Register(courses.Group("/:courseId"))
		}
	}

	// Caller-scoped views. The session gate is a fast reject; the service
	// guards still verify the profile behind the token.
	requireSession := middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.Next()
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny})

	me := api.Group("/me", jwtMiddleware, requireSession)
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(me)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(me)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterLearnerRoutes(me)
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.RegisterLearnerRoutes(me)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(me)
	}

	// Uploads are the easiest surface to abuse, so they carry a per-user
	// rate limit on top of authentication.
	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 30, time.Minute))
		deps.UploadHandler.Register(uploads)
	}
}
