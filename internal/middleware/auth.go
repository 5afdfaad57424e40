package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

const userLocalKey = "user"

// Authenticate verifies the Bearer token and stashes the decoded claims in
// the request locals. 401 without a token, 403 when verification fails.
func Authenticate(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		token := ""
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			return fiber.NewError(fiber.StatusForbidden, "invalid or expired token")
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "invalid token claims")
		}

		user := models.Claims{
			Username: asString(claims["username"]),
			Role:     asString(claims["role"]),
			Email:    asString(claims["email"]),
		}
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated user
// holds one of the given roles. Must run after Authenticate.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(userLocalKey).(models.Claims)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient permissions")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient permissions")
	}
}

// CurrentUser returns the claims Authenticate stored on the request.
func CurrentUser(c *fiber.Ctx) (models.Claims, bool) {
	user, ok := c.Locals(userLocalKey).(models.Claims)
	return user, ok
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
