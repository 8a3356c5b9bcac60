package server_test

import (
	"testing"
	"time"

	"catalog-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"Configured", "9090", ":9090"},
		{"Empty", "", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Port: tt.port}
			assert.Equal(t, tt.want, c.Addr())
		})
	}
}

func TestConfig_FiberConfig(t *testing.T) {
	c := server.Config{ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 0, BodyLimitBytes: 1024}
	fc := c.FiberConfig()

	assert.Equal(t, 5*time.Second, fc.ReadTimeout)
	assert.Zero(t, fc.WriteTimeout)
	assert.Equal(t, 1024, fc.BodyLimit)
	assert.True(t, fc.DisableStartupMessage)
}
