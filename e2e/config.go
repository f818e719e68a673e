package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR targets an already-running relay (host:port). When empty
	// the suite starts an in-process relay backed by a throwaway store.
	RelayAddr string `envconfig:"RELAY_ADDR"`
	// E2E_READ_TIMEOUT bounds how long the suite waits for a single frame
	ReadTimeout time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"5s"`
	// E2E_BUFFER_SIZE is the outbound buffer of the in-process relay
	BufferSize int `envconfig:"E2E_BUFFER_SIZE" default:"64"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
