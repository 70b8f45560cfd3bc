package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity the surrounding platform issues. The core never
// mints tokens; it only verifies them and trusts the flags inside.
type Claims struct {
	UserID      string `json:"user_id"`
	EduVerified bool   `json:"edu_verified"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// JWTMiddleware validates bearer tokens and stores the caller identity in
// locals: user_id, edu_verified, role.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := parseClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("edu_verified", claims.EduVerified)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

var parseClaimsFn = jwt.ParseWithClaims

// RequireVerified gates routes on the verified-student flag. Runs after
// JWTMiddleware.
func RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		verified, _ := c.Locals("edu_verified").(bool)
		if !verified {
			return fiber.NewError(fiber.StatusForbidden, "student verification required")
		}
		return c.Next()
	}
}

// RequireAdmin gates routes on the admin role. Runs after JWTMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != "admin" {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's id from locals.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
