package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// DashboardHandler serves the learner and instructor dashboards.
type DashboardHandler struct {
	learner    service.LearnerDashboardService
	instructor service.InstructorDashboardService
	logger     zerolog.Logger
}

// NewDashboardHandler builds a dashboard handler instance.
func NewDashboardHandler(learner service.LearnerDashboardService, instructor service.InstructorDashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		learner:    learner,
		instructor: instructor,
		logger:     logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.learnerDashboard)
	router.Get("/teaching/dashboard", h.instructorDashboard)
}

func (h *DashboardHandler) learnerDashboard(c *fiber.Ctx) error {
	dashboard, err := h.learner.Get(c.UserContext())
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) instructorDashboard(c *fiber.Ctx) error {
	dashboard, err := h.instructor.Get(c.UserContext())
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
