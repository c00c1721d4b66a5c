package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`

	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RoomIdleTimeout time.Duration `env:"ROOM_IDLE_TIMEOUT" envDefault:"30m"`

	SendBuffer     int      `env:"SEND_BUFFER" envDefault:"16"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Results archive is disabled when empty.
	PostgresDSN string `env:"POSTGRES_DSN"`
	ResultQueue int    `env:"RESULT_QUEUE" envDefault:"64"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c ServerConfig) ArchiveEnabled() bool {
	return c.PostgresDSN != ""
}
