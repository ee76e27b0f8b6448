package auth

import (
	"fmt"

	authhttp "course-station/internal/auth/adapter/http"
	"course-station/internal/auth/adapter/security"
	"course-station/internal/auth/config"
	"course-station/internal/auth/domain/repository"

	"github.com/gofiber/fiber/v2"
)

// AuthModule bundles token issuance and the Protect middleware. There is no
// user store: the original system mints tokens from a bare email and the
// catalog trusts whatever email a valid token carries.
type AuthModule struct {
	tokenSvc repository.TokenService
	handler  *authhttp.AuthHTTPHandler
	config   *config.Config
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(cfg *config.Config) (*AuthModule, error) {
	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return &AuthModule{
		tokenSvc: tokenSvc,
		handler:  authhttp.NewAuthHTTPHandler(tokenSvc),
		config:   cfg,
	}, nil
}

// RegisterRoutes registers the token issuance route with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutes(router, am.GetMiddleware())
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(am.tokenSvc)
}

// GetTokenService returns the token service for external access
func (am *AuthModule) GetTokenService() repository.TokenService {
	return am.tokenSvc
}
