// Package config loads and saves Nunitius's configuration: the server's
// listen address, a sender's default nickname/color, debug logging, and the
// bounded-channel capacity used throughout the hub.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arzg/nunitius/internal/model"
)

// Config is the full set of user-tunable settings.
type Config struct {
	ListenAddr      string      `yaml:"listen_addr" mapstructure:"listen_addr"`
	Nickname        string      `yaml:"nickname,omitempty" mapstructure:"nickname"`
	Color           model.Color `yaml:"color,omitempty" mapstructure:"color"`
	Debug           bool        `yaml:"debug" mapstructure:"debug"`
	ChannelCapacity int         `yaml:"channel_capacity" mapstructure:"channel_capacity"`
}

// Defaults returns the configuration used when no file or flag overrides a
// field.
func Defaults() Config {
	return Config{
		ListenAddr:      "127.0.0.1:9292",
		Debug:           false,
		ChannelCapacity: 100,
	}
}

// Validate rejects a configuration that cannot be used to run the system.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.ChannelCapacity < 1 {
		return fmt.Errorf("channel_capacity must be >= 1, got %d", c.ChannelCapacity)
	}
	if c.Color != "" && !model.ValidColor(c.Color) {
		return fmt.Errorf("color %q is not one of the supported colors", c.Color)
	}
	return nil
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied config path
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefaultConfig writes the default configuration to path, creating
// parent directories as needed.
func WriteDefaultConfig(path string) error {
	return Save(path, Defaults())
}

// Save marshals cfg as YAML and writes it to path, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: config files are not secrets
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
