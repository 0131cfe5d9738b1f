package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ClientsBaseURL string        `envconfig:"CLIENTS_BASE_URL" default:"http://localhost:9090"`
	AssetsBaseURL  string        `envconfig:"ASSETS_BASE_URL" default:"http://localhost:9091"`
	HTTPTimeout    time.Duration `envconfig:"LOOKUP_HTTP_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
