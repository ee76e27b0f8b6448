package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// CatalogConfig holds all configuration for the catalog module.
type CatalogConfig struct {
	MongoDBURI   string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"courseDB"`

	// EnrollmentQuota is the maximum number of courses one user may hold.
	EnrollmentQuota int64 `env:"ENROLLMENT_QUOTA" envDefault:"3"`

	// PageLimit caps latest-first and popularity listings.
	PageLimit int64 `env:"COURSE_PAGE_LIMIT" envDefault:"8"`

	// Redis settings for the enrollment event trail. The trail is disabled
	// when RedisAddr is empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*CatalogConfig, error) {
	cfg := &CatalogConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load catalog configuration from environment: " + err.Error())
	}
	if cfg.EnrollmentQuota < 1 {
		return nil, errors.New("ENROLLMENT_QUOTA must be at least 1")
	}
	if cfg.PageLimit < 1 {
		return nil, errors.New("COURSE_PAGE_LIMIT must be at least 1")
	}
	return cfg, nil
}
