// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarhrm/internal/config"
	"github.com/kortschak/polarhrm/internal/forkbeard"
	"github.com/kortschak/polarhrm/internal/goble"
	"github.com/kortschak/polarhrm/link"
)

// device is a connected sensor.
type device interface {
	link.Link
	Close() error
}

// connect connects to the sensor configured in cfg using the configured
// Bluetooth stack.
func connect(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (device, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	log = log.WithFields(logrus.Fields{"address": cfg.Address, "backend": cfg.Backend})
	switch cfg.Backend {
	case "tinygo":
		adapter := bluetooth.DefaultAdapter
		err := adapter.Enable()
		if err != nil {
			return nil, fmt.Errorf("failed to enable bluetooth: %w", err)
		}
		return forkbeard.Connect(ctx, adapter, cfg.Address, log)
	case "goble":
		return goble.Connect(ctx, cfg.Address, log)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// open loads the configuration, configures logging and connects to the
// sensor. The caller must close the returned device.
func open(cmd *cobra.Command) (*config.Config, *logrus.Logger, device, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := configureLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	cmd.SilenceUsage = true

	dev, err := connect(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("address", cfg.Address).Info("connected")
	return cfg, log, dev, nil
}
