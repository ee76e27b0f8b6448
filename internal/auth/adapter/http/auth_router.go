package http

import (
	"course-station/internal/auth/domain/repository"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for token issuance
type AuthHTTPHandler struct {
	tokens repository.TokenService
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(tokens repository.TokenService) *AuthHTTPHandler {
	return &AuthHTTPHandler{tokens: tokens}
}

// SetupAuthRoutes sets up the token issuance route
func (h *AuthHTTPHandler) SetupAuthRoutes(router fiber.Router, middleware *AuthMiddleware) {
	router.Post("/jwt", middleware.RateLimiter(), h.IssueToken)
}

type tokenRequest struct {
	Email string `json:"email"`
}

// IssueToken mints a token for the given email. Identity verification is a
// collaborator concern upstream of this service; the token only fixes which
// email the catalog operations will act on behalf of.
func (h *AuthHTTPHandler) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email is required",
		})
	}

	token, err := h.tokens.GenerateToken(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{"token": token})
}
