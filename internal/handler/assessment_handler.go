package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// AssessmentHandler exposes the self-assessment workflow.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. requirePlan guards every route
// that reads or writes answers; limitWrites throttles the writes.
func (h *AssessmentHandler) Register(router fiber.Router, requirePlan, limitWrites fiber.Handler) {
	router.Get("/:type/questions", h.catalogue)
	router.Get("/:type/progress", requirePlan, h.progress)
	router.Put("/:type/progress", limitWrites, requirePlan, h.saveProgress)
	router.Get("/:type/preview", requirePlan, h.preview)
	router.Post("/:type/submit", limitWrites, requirePlan, h.submit)
}

func (h *AssessmentHandler) catalogue(c *fiber.Ctx) error {
	catalogue, err := h.service.Catalogue(c.Params("type"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "questions retrieved", catalogue)
}

func (h *AssessmentHandler) progress(c *fiber.Ctx) error {
	progress, err := h.service.GetProgress(c.UserContext(), userIDFromContext(c), c.Params("type"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *AssessmentHandler) saveProgress(c *fiber.Ctx) error {
	var payload dto.AnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	progress, err := h.service.SaveProgress(c.UserContext(), activityActorFromContext(c), c.Params("type"), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "progress saved", progress)
}

func (h *AssessmentHandler) preview(c *fiber.Ctx) error {
	preview, err := h.service.Preview(c.UserContext(), userIDFromContext(c), c.Params("type"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "provisional result", preview)
}

func (h *AssessmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.AnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	result, err := h.service.Submit(c.UserContext(), activityActorFromContext(c), c.Params("type"), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment submitted", result)
}
