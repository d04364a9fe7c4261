// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the hrm command configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"

	"github.com/kortschak/polarhrm/pmd"
)

// Config holds the hrm command configuration.
type Config struct {
	// Address is the sensor's Bluetooth address.
	Address string `yaml:"address"`
	// Backend is the Bluetooth stack, "tinygo" or "goble".
	Backend  string `yaml:"backend" default:"tinygo"`
	LogLevel string `yaml:"log_level" default:"info"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"5s"`

	// RRWindow is the number of RR intervals averaged by monitor.
	RRWindow int `yaml:"rr_window" default:"16"`
	// StreamTypes are the measurement types queried by settings.
	// All stream types are queried when empty.
	StreamTypes []string `yaml:"stream_types"`
}

// DefaultDir returns the default config directory path.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "polarhrm")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config at path, returning the default config
// if path is the default path and it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}
	}
	return Load(path)
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Backend {
	case "tinygo", "goble":
	default:
		return fmt.Errorf("backend must be \"tinygo\" or \"goble\", got %q", c.Backend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	if c.RRWindow <= 0 {
		return fmt.Errorf("rr_window must be > 0")
	}
	_, err := c.Streams()
	return err
}

// Streams returns the measurement types named by StreamTypes, or all
// stream types if none are named.
func (c *Config) Streams() ([]pmd.MeasureType, error) {
	if len(c.StreamTypes) == 0 {
		return pmd.StreamTypes, nil
	}
	types := make([]pmd.MeasureType, 0, len(c.StreamTypes))
	for _, name := range c.StreamTypes {
		m, err := pmd.ParseMeasureType(name)
		if err != nil {
			return nil, fmt.Errorf("stream_types: %w", err)
		}
		types = append(types, m)
	}
	return types, nil
}
