package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity asserted by a token. The catalog module never
// sees tokens; it receives the email after validation and trusts it.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateToken(ctx context.Context, email string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
