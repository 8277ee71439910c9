package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// FeedbackHandler serves the public, token-authenticated rater form.
type FeedbackHandler struct {
	service service.EvaluatorService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.EvaluatorService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Get("/:token", h.open)
	router.Post("/:token", h.submit)
}

func (h *FeedbackHandler) open(c *fiber.Ctx) error {
	form, err := h.service.Open(c.UserContext(), c.Params("token"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "feedback form", form)
}

func (h *FeedbackHandler) submit(c *fiber.Ctx) error {
	var payload dto.FeedbackSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
	}

	response, err := h.service.Submit(c.UserContext(), c.Params("token"), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", response)
}
