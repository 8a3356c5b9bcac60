package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
	// WriteTimeoutSeconds bounds writing a response. POST /sync answers only when the
	// run ends, so this stays above sync.run_timeout_seconds. Zero disables it.
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" default:"1860"`
	// BodyLimitBytes caps request bodies.
	BodyLimitBytes int `mapstructure:"body_limit_bytes" default:"1048576"`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	if c.Port == "" {
		return ":8080"
	}
	return ":" + c.Port
}

// FiberConfig builds the fiber application settings.
func (c Config) FiberConfig() fiber.Config {
	return fiber.Config{
		AppName:               "catalog-sync",
		DisableStartupMessage: true,
		ReadTimeout:           seconds(c.ReadTimeoutSeconds),
		WriteTimeout:          seconds(c.WriteTimeoutSeconds),
		BodyLimit:             c.BodyLimitBytes,
	}
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
