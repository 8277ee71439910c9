package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(role interface{}, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != nil {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(RequireRole(allowed...))
	app.Get("/coach", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		status  int
	}{
		{name: "admin passes coach route", role: "admin", allowed: []string{AuthRoleCoach, AuthRoleAdmin}, status: fiber.StatusOK},
		{name: "coach with padding and case", role: " Coach ", allowed: []string{AuthRoleCoach, AuthRoleAdmin}, status: fiber.StatusOK},
		{name: "user rejected", role: "user", allowed: []string{AuthRoleCoach, AuthRoleAdmin}, status: fiber.StatusForbidden},
		{name: "missing role counts as user", role: nil, allowed: []string{AuthRoleUser}, status: fiber.StatusOK},
		{name: "missing role rejected on admin route", role: nil, allowed: []string{AuthRoleAdmin}, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := roleApp(tc.role, tc.allowed...).Test(httptest.NewRequest(http.MethodGet, "/coach", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireRoleReportsRequiredRoles(t *testing.T) {
	resp, err := roleApp("user", AuthRoleAdmin).Test(httptest.NewRequest(http.MethodGet, "/coach", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Success bool `json:"success"`
		Details struct {
			RequiredRoles []string `json:"required_roles"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.False(t, payload.Success)
	require.Equal(t, []string{AuthRoleAdmin}, payload.Details.RequiredRoles)
}
