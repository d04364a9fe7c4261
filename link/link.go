// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link defines the GATT capability used to talk to a connected
// sensor.
package link

import (
	"fmt"

	"github.com/kortschak/polarhrm"
)

// Link is a connected Bluetooth peripheral's GATT characteristics,
// addressed by UUID string.
type Link interface {
	// Write writes data to the characteristic. If ack is true the
	// write waits for the peripheral's write response.
	Write(char string, data []byte, ack bool) error
	// Read returns the current value of the characteristic.
	Read(char string) ([]byte, error)
	// Subscribe enables notifications from the characteristic. The
	// handler is called for each notification and must not block.
	Subscribe(char string, h func([]byte)) error
	// Unsubscribe disables notifications from the characteristic.
	Unsubscribe(char string) error
}

// Transport wraps a link error so that it matches polarhrm.ErrTransport.
// A nil err returns nil.
func Transport(op, char string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %w", polarhrm.ErrTransport, op, char, err)
}
