package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	JWTSecretKey   string        `env:"JWT_SECRET,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"course-station"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}
	return cfg, nil
}
