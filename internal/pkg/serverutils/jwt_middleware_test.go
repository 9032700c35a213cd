package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")

	app := fiber.New()
	app.Get("/protected", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"user_id": ctx.Locals("user_id")})
	})
	return app
}

func hmacToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func requestWithToken(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJwtMiddlewareRejectsMissingAndMalformed(t *testing.T) {
	app := newProtectedApp(t)

	resp := requestWithToken(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = requestWithToken(t, app, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJwtMiddlewareRejectsWrongSecret(t *testing.T) {
	app := newProtectedApp(t)

	token := hmacToken(t, "other_secret", jwt.MapClaims{"user_id": "u1"})
	resp := requestWithToken(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJwtMiddlewareRejectsMissingIdentity(t *testing.T) {
	app := newProtectedApp(t)

	token := hmacToken(t, "test_secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	resp := requestWithToken(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJwtMiddlewareAcceptsUserIDClaim(t *testing.T) {
	app := newProtectedApp(t)

	token := hmacToken(t, "test_secret", jwt.MapClaims{"user_id": "u1"})
	resp := requestWithToken(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJwtMiddlewareFallsBackToSubClaim(t *testing.T) {
	app := newProtectedApp(t)

	token := hmacToken(t, "test_secret", jwt.MapClaims{"sub": "u2"})
	resp := requestWithToken(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
