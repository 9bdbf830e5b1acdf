package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edubridge-kr/lms-api/internal/service"
	"github.com/edubridge-kr/lms-api/internal/utils"
)

// CatalogHandler serves the public course catalog.
type CatalogHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCatalogHandler builds a catalog handler instance.
func NewCatalogHandler(service service.CourseService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/courses", h.list)
	router.Get("/courses/:courseId", h.get)
}

func (h *CatalogHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.ListCatalog(c.UserContext())
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "catalog retrieved", courses)
}

func (h *CatalogHandler) get(c *fiber.Ctx) error {
	course, err := h.service.GetCatalogCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handleServiceError(c, *requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}
