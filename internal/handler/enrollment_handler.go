package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// EnrollmentHandler manages learner enrollment endpoints.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler builds an enrollment handler instance.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches the course-scoped routes. The group is expected to carry
// the :courseId parameter.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Post("/enroll", h.enroll)
	router.Delete("/enroll", h.withdraw)
}

// RegisterLearnerRoutes attaches the learner-scoped listing to a /me group.
func (h *EnrollmentHandler) RegisterLearnerRoutes(router fiber.Router) {
	router.Get("/enrollments", h.listOwn)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	enrollment, err := h.service.Enroll(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *EnrollmentHandler) withdraw(c *fiber.Ctx) error {
	if err := h.service.Withdraw(c.UserContext(), c.Params("courseId")); err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "withdrawn", nil)
}

func (h *EnrollmentHandler) listOwn(c *fiber.Ctx) error {
	enrollments, err := h.service.ListOwn(c.UserContext())
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}
