package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// handleError maps domain errors onto HTTP statuses. Anything unrecognised is logged and
// reported as a 500 without leaking internals.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var answerErr *scoring.ValidationError
	var requestErr validator.ValidationErrors

	switch {
	case errors.As(err, &answerErr):
		message := "invalid answers"
		if answerErr.Reason == scoring.ReasonUnsupportedType {
			message = "unsupported assessment type"
		}
		details := fiber.Map{"reason": answerErr.Reason}
		if answerErr.Type != "" {
			details["assessment_type"] = answerErr.Type
		}
		if len(answerErr.QuestionIDs) > 0 {
			details["question_ids"] = answerErr.QuestionIDs
		}
		return utils.Fail(c, fiber.StatusBadRequest, message, details)
	case errors.Is(err, scoring.ErrUnsupportedType):
		return utils.Fail(c, fiber.StatusBadRequest, "unsupported assessment type", nil)
	case errors.As(err, &requestErr):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request", validationDetails(err))
	case errors.Is(err, service.ErrInvalidEvaluatorName), errors.Is(err, service.ErrInvalidActivityFilter):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrEvaluatorNotFound), errors.Is(err, service.ErrFeedbackTokenNotFound):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, scoring.ErrAlreadyCompleted):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, scoring.ErrTokenExpired):
		return utils.Fail(c, fiber.StatusGone, err.Error(), nil)
	case errors.Is(err, service.ErrPlanRequired):
		return utils.Fail(c, fiber.StatusPaymentRequired, "plan upgrade required", nil)
	default:
		requestLogger(logger, c).Error().Err(err).Str("route", c.Route().Path).Msg("internal server error")
		return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
	}
}
