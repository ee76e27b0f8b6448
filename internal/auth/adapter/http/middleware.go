package http

import (
	"context"
	"strings"
	"time"

	"course-station/internal/auth/domain/repository"
	"course-station/internal/shared/contextkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// UserEmailLocal is the fiber.Ctx locals key holding the authenticated email.
const UserEmailLocal = "userEmail"

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	tokens repository.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokens repository.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Protect validates the Bearer token and stores the asserted email in the
// request locals and context. Missing credentials are 401, bad ones 403.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized access",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized access",
			})
		}

		claims, err := m.tokens.ValidateToken(c.Context(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden access",
			})
		}

		c.Locals(UserEmailLocal, claims.Email)
		ctx := context.WithValue(c.UserContext(), contextkeys.UserEmailKey, claims.Email)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RateLimiter creates rate limiting middleware for the token endpoint
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware tags every request for log correlation
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header: "X-Request-ID",
	})
}
