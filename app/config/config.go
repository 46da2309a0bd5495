// Package config loads the YAML configuration shared by every command.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server   Server   `yaml:"server"`
	Remote   Remote   `yaml:"remote"`
	Assembly Assembly `yaml:"assembly"`
	Store    Store    `yaml:"store"`
	Log      Log      `yaml:"log"`
}

// Server configures the page server.
type Server struct {
	Addr  string `yaml:"addr" validate:"required"`
	Title string `yaml:"title" validate:"required"`
}

// Remote points at the collection store the page reads from.
type Remote struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// Assembly tunes the post list assembler.
type Assembly struct {
	Parallelism int `yaml:"parallelism" validate:"gte=1,lte=64"`
}

// Store configures the local collection store.
type Store struct {
	Addr string `yaml:"addr" validate:"required"`
	Path string `yaml:"path" validate:"required"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080", Title: "Posts"},
		Remote:   Remote{BaseURL: "https://jsonplaceholder.typicode.com"},
		Assembly: Assembly{Parallelism: 1},
		Store:    Store{Addr: ":8081", Path: "data/badger"},
		Log:      Log{Level: "info"},
	}
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
