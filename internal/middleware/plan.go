package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// AssessmentTypeResolver extracts the assessment type a request operates on.
type AssessmentTypeResolver func(c *fiber.Ctx) string

// FromParam resolves the assessment type from a route parameter.
func FromParam(name string) AssessmentTypeResolver {
	return func(c *fiber.Ctx) string {
		return c.Params(name)
	}
}

// Fixed resolves every request to the same assessment type.
func Fixed(assessmentType scoring.AssessmentType) AssessmentTypeResolver {
	return func(*fiber.Ctx) string {
		return string(assessmentType)
	}
}

// RequirePlan rejects requests whose user plan does not unlock the resolved assessment type.
// Unknown types pass through so the handler can report them as validation errors.
func RequirePlan(gate service.PlanGate, resolve AssessmentTypeResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if gate == nil {
			return c.Next()
		}
		assessmentType, ok := scoring.ParseAssessmentType(resolve(c))
		if !ok {
			return c.Next()
		}

		userID, _ := c.Locals("user_id").(uint)
		if userID == 0 {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if err := gate.Allow(c.UserContext(), userID, assessmentType); err != nil {
			if errors.Is(err, service.ErrPlanRequired) {
				return utils.Fail(c, fiber.StatusPaymentRequired, "plan upgrade required", fiber.Map{"assessment_type": assessmentType})
			}
			return utils.Fail(c, fiber.StatusInternalServerError, "failed to check plan", nil)
		}
		return c.Next()
	}
}
