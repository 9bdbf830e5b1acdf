package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// CourseHandler manages the instructor-facing course endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler builds a course handler instance.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:courseId", h.get)
	router.Put("/:courseId", h.update)
	router.Post("/:courseId/publish", h.publish)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.CreateDraft(c.UserContext(), payload)
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.ListOwn(c.UserContext())
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	course, err := h.service.GetOwn(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	var payload dto.CourseDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.UserContext(), c.Params("courseId"), payload)
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) publish(c *fiber.Ctx) error {
	course, err := h.service.Publish(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course published", course)
}
