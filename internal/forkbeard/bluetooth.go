// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forkbeard provides a link.Link backed by tinygo.org/x/bluetooth.
package forkbeard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarhrm/link"
)

// Link is a link.Link over a connected tinygo Bluetooth device.
type Link struct {
	dev *bluetooth.Device

	mu    sync.Mutex
	chars map[bluetooth.UUID]*bluetooth.DeviceCharacteristic
}

var _ link.Link = (*Link)(nil)

// NewLink returns a Link for the connected device. Services and
// characteristics are discovered on first use.
func NewLink(dev *bluetooth.Device) *Link {
	return &Link{dev: dev}
}

// Connect scans for the device with the given address using adapter and
// connects to it. The adapter must already be enabled.
func Connect(ctx context.Context, adapter *bluetooth.Adapter, addr string, log logrus.FieldLogger) (*Link, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	stop := context.AfterFunc(ctx, func() { adapter.StopScan() })
	defer stop()

	log.WithField("address", addr).Info("scanning")
	var (
		found   bool
		dev     bluetooth.Device
		connErr error
	)
	err := adapter.Scan(func(adapter *bluetooth.Adapter, res bluetooth.ScanResult) {
		if !strings.EqualFold(res.Address.String(), addr) {
			return
		}
		log.WithFields(logrus.Fields{
			"address": res.Address.String(),
			"name":    res.LocalName(),
			"rssi":    res.RSSI,
		}).Info("found device")
		found = true
		dev, connErr = adapter.Connect(res.Address, bluetooth.ConnectionParams{
			ConnectionTimeout: bluetooth.NewDuration(timeout),
		})
		adapter.StopScan()
	})
	if !found {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("device %s not found: %w", addr, ctx.Err())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		return nil, fmt.Errorf("device %s not found", addr)
	}
	if connErr != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, connErr)
	}
	return NewLink(&dev), nil
}

// characteristic returns the characteristic with the given UUID, discovering
// the device's services on the first call. Notification state is held in
// the characteristic, so all calls for a UUID use the same value.
func (l *Link) characteristic(id string) (*bluetooth.DeviceCharacteristic, error) {
	uuid, err := bluetooth.ParseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid characteristic uuid %q: %w", id, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.chars == nil {
		chars, err := discover(l.dev)
		if err != nil {
			return nil, err
		}
		l.chars = chars
	}
	char, ok := l.chars[uuid]
	if !ok {
		return nil, fmt.Errorf("device characteristic %s not found", uuid)
	}
	return char, nil
}

func discover(dev *bluetooth.Device) (map[bluetooth.UUID]*bluetooth.DeviceCharacteristic, error) {
	srv, err := dev.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}
	chars := make(map[bluetooth.UUID]*bluetooth.DeviceCharacteristic)
	for _, s := range srv {
		char, err := s.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to discover characteristics of %s: %w", s.UUID(), err)
		}
		for _, c := range char {
			chars[c.UUID()] = &c
		}
	}
	return chars, nil
}

func (l *Link) Write(id string, data []byte, ack bool) error {
	char, err := l.characteristic(id)
	if err != nil {
		return err
	}
	if ack {
		return writeRequest(char, data)
	}
	_, err = char.WriteWithoutResponse(data)
	return err
}

// Read reads data from a Bluetooth characteristic.
func (l *Link) Read(id string) ([]byte, error) {
	char, err := l.characteristic(id)
	if err != nil {
		return nil, err
	}
	mtu, err := char.GetMTU()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain mtu of characteristic: %w", err)
	}
	buf := make([]byte, mtu)
	n, err := char.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return buf[:n], fmt.Errorf("failed to read response from characteristic: %w", err)
	}
	return buf[:n], nil
}

func (l *Link) Subscribe(id string, h func([]byte)) error {
	char, err := l.characteristic(id)
	if err != nil {
		return err
	}
	return char.EnableNotifications(h)
}

func (l *Link) Unsubscribe(id string) error {
	char, err := l.characteristic(id)
	if err != nil {
		return err
	}
	return char.EnableNotifications(nil)
}

// Close disconnects the device.
func (l *Link) Close() error {
	return l.dev.Disconnect()
}
