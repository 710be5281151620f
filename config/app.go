package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// Expiry worker knobs.
	ExpiryPollInterval time.Duration `env:"EXPIRY_POLL_INTERVAL" default:"30s"`
	ExpiryMaxAttempts  int           `env:"EXPIRY_MAX_ATTEMPTS" default:"5"`
}
