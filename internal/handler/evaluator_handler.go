package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// EvaluatorHandler lets a subject manage the raters of their 360° feedback.
type EvaluatorHandler struct {
	service service.EvaluatorService
	logger  zerolog.Logger
}

// NewEvaluatorHandler builds an evaluator handler instance.
func NewEvaluatorHandler(service service.EvaluatorService, logger zerolog.Logger) *EvaluatorHandler {
	return &EvaluatorHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluator_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluatorHandler) Register(router fiber.Router, requirePlan, limitWrites fiber.Handler) {
	router.Post("", limitWrites, requirePlan, h.invite)
	router.Get("", requirePlan, h.list)
	router.Get("/feedback", h.feedback)
	router.Delete("/:id", h.remove)
}

func (h *EvaluatorHandler) invite(c *fiber.Ctx) error {
	var payload dto.EvaluatorInviteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	evaluator, err := h.service.Invite(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluator invited", evaluator)
}

func (h *EvaluatorHandler) list(c *fiber.Ctx) error {
	evaluators, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluators retrieved", evaluators)
}

func (h *EvaluatorHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := h.service.Remove(c.UserContext(), activityActorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "evaluator removed", nil)
}

func (h *EvaluatorHandler) feedback(c *fiber.Ctx) error {
	feedback, err := h.service.Feedback(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	message := "feedback aggregate"
	if !feedback.Available {
		message = "feedback not yet available"
	}
	return utils.SendSuccess(c, message, feedback)
}
