package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Game       Game   `yaml:"game"`
}

type Game struct {
	StartingBalance int `yaml:"starting-balance" env:"STARTING_BALANCE" env-default:"100"`
	RoomPurgeDelay  int `yaml:"room-purge-delay" env:"ROOM_PURGE_DELAY" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// GetRoomPurgeDelay - how long a forfeited room stays visible before it is purged.
func (that *Game) GetRoomPurgeDelay() time.Duration {
	return time.Duration(that.RoomPurgeDelay) * time.Second
}
