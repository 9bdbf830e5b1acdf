package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/dto"
	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// AssignmentHandler manages assignment endpoints nested under a course.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The group is
// expected to carry the :courseId parameter.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:assignmentId", h.get)
	router.Put("/:assignmentId", h.update)
	router.Post("/:assignmentId/publish", h.publish)
	router.Post("/:assignmentId/close", h.close)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.CreateDraft(c.UserContext(), c.Params("courseId"), payload)
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.ListForCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	assignment, err := h.service.GetForCourse(c.UserContext(), c.Params("courseId"), c.Params("assignmentId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	var payload dto.AssignmentDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Update(c.UserContext(), c.Params("courseId"), c.Params("assignmentId"), payload)
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) publish(c *fiber.Ctx) error {
	assignment, err := h.service.Publish(c.UserContext(), c.Params("courseId"), c.Params("assignmentId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assignment published", assignment)
}

func (h *AssignmentHandler) close(c *fiber.Ctx) error {
	assignment, err := h.service.Close(c.UserContext(), c.Params("courseId"), c.Params("assignmentId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assignment closed", assignment)
}
