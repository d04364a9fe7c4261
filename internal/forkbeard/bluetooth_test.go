// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forkbeard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"
)

func TestCharacteristicIdentity(t *testing.T) {
	hr := &bluetooth.DeviceCharacteristic{}
	cp := &bluetooth.DeviceCharacteristic{}
	l := &Link{chars: map[bluetooth.UUID]*bluetooth.DeviceCharacteristic{
		bluetooth.New16BitUUID(0x2a37): hr,
		bluetooth.NewUUID([16]byte{
			0xfb, 0x00, 0x5c, 0x81, 0x02, 0xe7, 0xf3, 0x87,
			0x1c, 0xad, 0x8a, 0xcd, 0x2d, 0x8d, 0xf0, 0xc8,
		}): cp,
	}}

	// Subscribe and Unsubscribe must act on the same characteristic
	// for notification state to be shared between them.
	for range 2 {
		got, err := l.characteristic("00002a37-0000-1000-8000-00805f9b34fb")
		require.NoError(t, err)
		assert.Same(t, hr, got)

		got, err = l.characteristic("FB005C81-02E7-F387-1CAD-8ACD2D8DF0C8")
		require.NoError(t, err)
		assert.Same(t, cp, got)
	}

	_, err := l.characteristic("00002a19-0000-1000-8000-00805f9b34fb")
	assert.Error(t, err)
	_, err = l.characteristic("not-a-uuid")
	assert.Error(t, err)
}
