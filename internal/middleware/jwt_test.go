package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newJWTApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(JWTProtected(jwtTestSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := newJWTApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsForeignSignature(t *testing.T) {
	app := newJWTApp(t)

	token := signToken(t, "some-other-secret", jwt.MapClaims{
		"sub": 2,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := newJWTApp(t)

	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub": 2,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedBindsActorLocals(t *testing.T) {
	app := fiber.New()
	app.Use(JWTProtected(jwtTestSecret))

	var gotUserID, gotScopedID uint
	var gotRole string
	app.Get("/me", func(c *fiber.Ctx) error {
		gotUserID, _ = c.Locals("user_id").(uint)
		gotRole, _ = c.Locals("user_role").(string)
		gotScopedID, _ = c.Locals("scoped_id").(uint)
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub":       2,
		"role":      "Student",
		"scoped_id": 5,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(2), gotUserID)
	require.Equal(t, "student", gotRole, "role claim is normalized")
	require.Equal(t, uint(5), gotScopedID)
}
