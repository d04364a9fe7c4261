// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package goble

import (
	"errors"
	"runtime"

	"github.com/go-ble/ble"
)

func newDevice() (ble.Device, error) {
	return nil, errors.New("go-ble is not supported on " + runtime.GOOS)
}
