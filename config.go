// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the renderer configuration, usually read from a TOML file.
type Config struct {
	// Backend names the context backend ("native", "software"); empty picks
	// the best available one.
	Backend string `toml:"backend"`

	// Width and Height are the initial drawable size.
	Width  int32 `toml:"width"`
	Height int32 `toml:"height"`

	// ChannelCapacity bounds the result channel. 0 means unbounded.
	ChannelCapacity int `toml:"channel_capacity"`

	// TextureMemoryMB is the texture cache budget in MiB. 0 means no budget.
	TextureMemoryMB int `toml:"texture_memory_mb"`

	Shaders ShaderConfig `toml:"shaders"`

	// LogLevel is one of debug, info, warn, error. Empty keeps logging off.
	LogLevel string `toml:"log_level"`
}

// ShaderConfig locates shader sources.
type ShaderConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Width:           1024,
		Height:          768,
		ChannelCapacity: 0,
		TextureMemoryMB: 256,
		Shaders: ShaderConfig{
			Dir: "res",
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data over the defaults and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: drawable size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.ChannelCapacity < 0:
		return fmt.Errorf("%w: channel_capacity %d", ErrInvalidConfig, c.ChannelCapacity)
	case c.TextureMemoryMB < 0:
		return fmt.Errorf("%w: texture_memory_mb %d", ErrInvalidConfig, c.TextureMemoryMB)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// TextureMemoryBytes returns the texture budget in bytes.
func (c Config) TextureMemoryBytes() uint64 {
	return uint64(c.TextureMemoryMB) << 20
}

// Level parses LogLevel. An empty or "off" level maps above slog.LevelError
// so that nothing is emitted.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "off":
		return slog.LevelError + 4, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
}

// LoggingEnabled reports whether LogLevel turns logging on.
func (c Config) LoggingEnabled() bool {
	l := strings.ToLower(c.LogLevel)
	return l != "" && l != "off"
}
