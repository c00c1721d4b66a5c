package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL  string `env:"WS_URL" envDefault:"ws://localhost:3000/ws"`
	RoomID string `env:"ROOM_ID" envDefault:"bots"`
	// Create the room instead of joining it.
	Create bool `env:"BOT_CREATE" envDefault:"false"`
	// Games to play before exiting; 0 plays until disconnected.
	Games int `env:"BOT_GAMES" envDefault:"1"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
