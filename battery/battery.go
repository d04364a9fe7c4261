// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package battery implements reading of the standard 180f Bluetooth
// battery service characteristic.
package battery

import (
	"fmt"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/link"
)

const (
	ServiceID             = "0000180f-0000-1000-8000-00805f9b34fb"
	LevelCharacteristicID = "00002a19-0000-1000-8000-00805f9b34fb"
)

// Level returns the battery level percentage of the sensor connected
// through l.
func Level(l link.Link) (int, error) {
	// https://www.bluetooth.com/specifications/specs/battery-service/

	resp, err := l.Read(LevelCharacteristicID)
	if err != nil {
		return 0, link.Transport("read", LevelCharacteristicID, err)
	}
	if len(resp) == 0 {
		return 0, fmt.Errorf("%w: empty battery level", polarhrm.ErrMalformedFrame)
	}
	if resp[0] > 100 {
		return 0, fmt.Errorf("%w: battery level out of range: %d", polarhrm.ErrMalformedFrame, resp[0])
	}
	return int(resp[0]), nil
}
