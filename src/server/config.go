package server

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the HTTP server settings. ShutdownGrace bounds how long
// in-flight requests may run after SIGINT/SIGTERM before the listener is
// torn down.
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	ShutdownGrace time.Duration `envconfig:"SHUTDOWN_GRACE" default:"5s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
