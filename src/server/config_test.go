package server

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("SHUTDOWN_GRACE")

	config := GetConfig()

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, 5*time.Second, config.ShutdownGrace)
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("SHUTDOWN_GRACE", "30s")

	config := GetConfig()

	assert.Equal(t, "7777", config.Port)
	assert.Equal(t, 30*time.Second, config.ShutdownGrace)
}
