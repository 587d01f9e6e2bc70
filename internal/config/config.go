package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

var (
	ErrInvalidMode = errors.New("invalid mode")
	ErrInvalidPort = errors.New("invalid port")
)

type Config struct {
	LogLevel         string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Mode             string        `yaml:"mode" env:"MODE" env-default:""`
	Port             int           `yaml:"port" env:"PORT" env-default:"5000"`
	HostAddress      string        `yaml:"host-address" env:"HOST_ADDRESS" env-default:""`
	ConnectTimeout   time.Duration `yaml:"connect-timeout" env:"CONNECT_TIMEOUT" env-default:"10s"`
	HandshakeTimeout time.Duration `yaml:"handshake-timeout" env:"HANDSHAKE_TIMEOUT" env-default:"10s"`
	History          History       `yaml:"history"`
}

type History struct {
	Enabled bool  `yaml:"enabled" env:"HISTORY_ENABLED" env-default:"false"`
	Limit   int64 `yaml:"limit" env:"HISTORY_LIMIT" env-default:"10"`
	Redis   Redis `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadEnv - builds the config from the environment only, for runs without config.yml.
func LoadEnv() (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate - an empty mode is allowed, it is asked for at startup.
func (that *Config) Validate() error {
	switch entity.Mode(that.Mode) {
	case "", entity.ModeLocal, entity.ModeHost, entity.ModeJoin:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, that.Mode)
	}

	if that.Port < 0 || that.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, that.Port)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}
