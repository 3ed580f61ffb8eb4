package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string   `env:"PORT" envDefault:"8080"`
	DatabaseURL   string   `env:"DATABASE_URL,required"`
	JWTSecret     string   `env:"JWT_SECRET,required"`
	JWTIssuer     string   `env:"JWT_ISSUER" envDefault:"krabbel-backend"`
	JWTTTLMinutes int      `env:"JWT_TTL_MINUTES" envDefault:"60"`
	CORSOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 60
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return cfg, nil
}

// JWTTTL returns the configured token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}
