// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package forkbeard

import "tinygo.org/x/bluetooth"

// writeRequest writes data to char and waits for the write response.
func writeRequest(char *bluetooth.DeviceCharacteristic, data []byte) error {
	_, err := char.Write(data)
	return err
}
