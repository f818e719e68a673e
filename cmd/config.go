package main

import (
	"fmt"
	"time"
)

type Config struct {
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	IndexBufferSize      int           `env:"INDEX_BUFFER_SIZE,default=1024"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath        string        `env:"BLUGE_FILEPATH"`
	CensoredDir          string        `env:"CENSORED_DIR"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	SearchLimit          int           `env:"SEARCH_LIMIT,default=10"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	AllowedOrigin        string        `env:"ALLOWED_ORIGIN"`
	DebugPort            int           `env:"DEBUG_PORT"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
