package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK sends a 200 envelope with optional pagination or other metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		Meta:    meta,
	})
}

// Fail sends an error envelope carrying machine-readable details.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}
