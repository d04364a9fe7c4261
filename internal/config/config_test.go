// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/polarhrm/pmd"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, &Config{
		Backend:        "tinygo",
		LogLevel:       "info",
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 5 * time.Second,
		RRWindow:       16,
	}, cfg)
	require.NoError(t, cfg.Validate())

	streams, err := cfg.Streams()
	require.NoError(t, err)
	assert.Equal(t, pmd.StreamTypes, streams)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
address: "A0:9E:1A:12:34:56"
backend: goble
request_timeout: 2s
stream_types: [ecg, acc]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "A0:9E:1A:12:34:56", cfg.Address)
	assert.Equal(t, "goble", cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout, "default not applied")
	assert.Equal(t, "info", cfg.LogLevel, "default not applied")

	streams, err := cfg.Streams()
	require.NoError(t, err)
	assert.Equal(t, []pmd.MeasureType{pmd.ECGType, pmd.AccType}, streams)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "backend: [not, a, string"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"backend":         func(c *Config) { c.Backend = "bluez" },
		"log_level":       func(c *Config) { c.LogLevel = "trace" },
		"connect_timeout": func(c *Config) { c.ConnectTimeout = 0 },
		"request_timeout": func(c *Config) { c.RequestTimeout = -time.Second },
		"rr_window":       func(c *Config) { c.RRWindow = 0 },
		"stream_types":    func(c *Config) { c.StreamTypes = []string{"ecg", "rfu"} },
	} {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit missing path")
}
