// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forkbeard

import "tinygo.org/x/bluetooth"

// writeRequest writes data to char and waits for the write response.
// BlueZ issues WriteValue without a type option as a write request.
func writeRequest(char *bluetooth.DeviceCharacteristic, data []byte) error {
	_, err := char.WriteWithoutResponse(data)
	return err
}
