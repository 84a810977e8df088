package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tair/membership-platform/pkg/auth"
)

// AuthMiddleware rejects requests without a valid bearer token. The checkout
// service validates tokens again; the gateway check just stops obvious
// unauthenticated traffic before it is proxied.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := bearerClaims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// AdminMiddleware requires the admin role on top of a valid token
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Locals("role")
		if role == nil || role.(string) != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves the member identity when a token is present
// but lets anonymous requests through. Guest checkout uses this: members get
// per-account rate limiting, guests fall back to per-IP.
func OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := bearerClaims(c); ok {
			storeClaims(c, claims)
		}
		return c.Next()
	}
}

func bearerClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := auth.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func storeClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)

	// Identity headers for the checkout service
	c.Request().Header.Set("X-User-ID", fmt.Sprintf("%d", claims.UserID))
	c.Request().Header.Set("X-Username", claims.Username)
	c.Request().Header.Set("X-User-Role", claims.Role)
}
