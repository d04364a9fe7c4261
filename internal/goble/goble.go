// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goble provides a link.Link backed by github.com/go-ble/ble.
package goble

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/kortschak/polarhrm/link"
)

// Link is a link.Link over a go-ble client.
type Link struct {
	client  ble.Client
	profile *ble.Profile
}

var _ link.Link = (*Link)(nil)

// Connect dials the device with the given address on the platform's
// default HCI device and discovers its GATT profile.
func Connect(ctx context.Context, addr string, log logrus.FieldLogger) (*Link, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	dev, err := newDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to create ble device: %w", err)
	}
	ble.SetDefaultDevice(dev)

	log.WithField("address", addr).Info("dialing")
	client, err := ble.Dial(ctx, ble.NewAddr(addr))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	l, err := NewLink(client)
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			log.WithField("error", cancelErr).Warn("failed to cancel connection after profile discovery failure")
		}
		return nil, err
	}
	log.WithField("services", len(l.profile.Services)).Debug("discovered profile")
	return l, nil
}

// NewLink returns a Link for a connected client, discovering its profile.
func NewLink(client ble.Client) (*Link, error) {
	p, err := client.DiscoverProfile(true)
	if err != nil {
		return nil, fmt.Errorf("failed to discover profile: %w", err)
	}
	return &Link{client: client, profile: p}, nil
}

func (l *Link) characteristic(id string) (*ble.Characteristic, error) {
	want := normalize(id)
	for _, s := range l.profile.Services {
		for _, c := range s.Characteristics {
			if normalize(c.UUID.String()) == want {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("device characteristic %s not found", id)
}

// baseSuffix is the Bluetooth Base UUID without its 16-bit alias field.
const baseSuffix = "00001000800000805f9b34fb"

// normalize returns the short form of Bluetooth SIG UUIDs and the
// undashed lower case form of all others.
func normalize(uuid string) string {
	s := strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, baseSuffix) {
		return s[4:8]
	}
	return s
}

func (l *Link) Write(id string, data []byte, ack bool) error {
	c, err := l.characteristic(id)
	if err != nil {
		return err
	}
	return l.client.WriteCharacteristic(c, data, !ack)
}

func (l *Link) Read(id string) ([]byte, error) {
	c, err := l.characteristic(id)
	if err != nil {
		return nil, err
	}
	return l.client.ReadCharacteristic(c)
}

func (l *Link) Subscribe(id string, h func([]byte)) error {
	c, err := l.characteristic(id)
	if err != nil {
		return err
	}
	return l.client.Subscribe(c, false, h)
}

func (l *Link) Unsubscribe(id string) error {
	c, err := l.characteristic(id)
	if err != nil {
		return err
	}
	return l.client.Unsubscribe(c, false)
}

// Close cancels the connection.
func (l *Link) Close() error {
	return l.client.CancelConnection()
}
