// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The hrm command is a demonstration of the heart, pmd and battery
// packages for Polar heart rate sensors.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kortschak/polarhrm/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "hrm",
	Short: "Polar heart rate sensor client",
	Long: `hrm connects to a Polar heart rate sensor and provides:

- Live heart rate and RR interval monitoring
- Measurement settings queries over the PMD control point
- Battery level reporting`,
	SilenceErrors: true,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(batteryCmd)

	registerFlags(rootCmd)
}

// registerFlags adds the configuration override flags to cmd.
func registerFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default "+config.DefaultPath()+")")
	flags.String("addr", "", "sensor bluetooth address")
	flags.String("backend", "", "bluetooth stack (tinygo, goble)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Duration("timeout", 0, "control point request timeout")
}

// loadConfig loads the configuration file and applies command line
// flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if flags.Changed("addr") {
		cfg.Address, _ = flags.GetString("addr")
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout, _ = flags.GetDuration("timeout")
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Address == "" {
		return nil, errors.New("no sensor address: set --addr or address in config")
	}
	return cfg, nil
}
