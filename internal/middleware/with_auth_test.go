package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leadership-assessment-api/internal/middleware"
)

func withIdentity(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID > 0 {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	}
}

func TestWithAuthCoachRole(t *testing.T) {
	cases := []struct {
		role   string
		status int
	}{
		{role: "Coach", status: fiber.StatusNoContent},
		{role: "admin", status: fiber.StatusNoContent},
		{role: "user", status: fiber.StatusForbidden},
		{role: "", status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Use(withIdentity(10, tc.role))
		app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		}, middleware.AuthOptions{Role: middleware.AuthRoleCoach}))

		resp := perform(t, app)
		require.Equal(t, tc.status, resp.StatusCode, "role %q", tc.role)
	}
}

func TestWithAuthUserRoleAcceptsMissingRoleClaim(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity(4, ""))
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleUser}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWithAuthAdminOnly(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity(1, "coach"))
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWithAuthAnyRequiresUserByDefault(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthAnyAllowsAnonymousWhenOptedIn(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny, AllowAnonymous: true}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func perform(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthorizeGuardsGroup(t *testing.T) {
	cases := []struct {
		userID uint
		role   string
		status int
	}{
		{userID: 3, role: "coach", status: fiber.StatusNoContent},
		{userID: 3, role: "admin", status: fiber.StatusNoContent},
		{userID: 3, role: "user", status: fiber.StatusForbidden},
		{userID: 0, role: "coach", status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		app := fiber.New()
		group := app.Group("/", withIdentity(tc.userID, tc.role), middleware.Authorize(middleware.AuthOptions{Role: middleware.AuthRoleCoach}))
		group.Get("/", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})

		resp := perform(t, app)
		require.Equal(t, tc.status, resp.StatusCode, "user %d role %q", tc.userID, tc.role)
	}
}
