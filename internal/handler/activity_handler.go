package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// ActivityHandler serves the caller's recent audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler instance.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the activity routes to a /me group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.listOwn)
}

func (h *ActivityHandler) listOwn(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	actorID, _ := c.Locals("user_id").(string)
	if actorID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	entries, err := h.service.ListRecent(c.UserContext(), actorID, limit)
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
