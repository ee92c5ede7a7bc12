package jwtware_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-contacts/middleware/jwtware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaims struct {
	subject string
	use     string
}

func (s stubClaims) Subject() string  { return s.subject }
func (s stubClaims) UserID() string   { return s.subject }
func (s stubClaims) TokenUse() string { return s.use }

type stubValidator struct {
	accept string
	claims jwtware.AuthClaims
}

func (s stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if tokenString != s.accept {
		return nil, errors.New("token is malformed")
	}
	return s.claims, nil
}

func newGatedApp(validator jwtware.TokenValidator) *fiber.App {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenValidator: validator,
	}))
	app.Get("/private", func(c *fiber.Ctx) error {
		claims, _ := c.Locals("user").(jwtware.AuthClaims)
		return c.JSON(fiber.Map{"subject": claims.Subject()})
	})
	return app
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	app := newGatedApp(stubValidator{
		accept: "good-token",
		claims: stubClaims{subject: "account-1", use: "access"},
	})

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestMiddlewareRejectsBadRequests(t *testing.T) {
	app := newGatedApp(stubValidator{
		accept: "good-token",
		claims: stubClaims{subject: "account-1", use: "access"},
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic good-token"},
		{"bad token", "Bearer bad-token"},
		{"empty bearer", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			res, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		})
	}
}

func TestGetExtractors(t *testing.T) {
	tests := []struct {
		name        string
		tokenLookup string
		wantCount   int
	}{
		{"header only", "header:Authorization", 1},
		{"header and query", "header:Authorization,query:auth_token", 2},
		{"cookie", "cookie:jwt", 1},
		{"malformed entry skipped", "header", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractors := jwtware.GetExtractors(tt.tokenLookup, "Bearer")
			assert.Len(t, extractors, tt.wantCount)
		})
	}
}

func TestMiddlewareFilterSkipsGate(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenValidator: stubValidator{accept: "good-token"},
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/public"
		},
	}))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	res, err := app.Test(httptest.NewRequest("GET", "/public", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
