package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// ResultHandler serves stored results and the cached overview.
type ResultHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewResultHandler builds a result handler instance.
func NewResultHandler(service service.AssessmentService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches the caller's own result routes.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/overview", h.overview)
}

// RegisterCoach attaches read-only routes for coaches viewing a client's results.
func (h *ResultHandler) RegisterCoach(router fiber.Router) {
	router.Get("/users/:userID/overview", h.clientOverview)
}

func (h *ResultHandler) list(c *fiber.Ctx) error {
	results, err := h.service.ListResults(c.UserContext(), userIDFromContext(c), c.Query("type"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultHandler) overview(c *fiber.Ctx) error {
	return h.respondOverview(c, userIDFromContext(c))
}

func (h *ResultHandler) clientOverview(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	return h.respondOverview(c, userID)
}

func (h *ResultHandler) respondOverview(c *fiber.Ctx, userID uint) error {
	overview, err := h.service.Overview(c.UserContext(), userID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	if overview.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return utils.SendSuccess(c, "results overview", overview)
}
