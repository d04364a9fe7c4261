// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package polarhrm holds the error classes shared by the heart rate
// and Polar Measurement Data packages.
//
// Errors returned by the packages of this module wrap one of the
// sentinel values below and should be tested with [errors.Is].
package polarhrm

import "errors"

var (
	// ErrMalformedFrame is returned when a notification payload is
	// shorter than its own header implies or is otherwise inconsistent.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrRequestTimeout is returned when no control point notification
	// arrives before a request's deadline.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrTransport is returned when the underlying Bluetooth link fails
	// a write, read or (un)subscription, or when the control channel has
	// not been enabled.
	ErrTransport = errors.New("transport failure")

	// ErrNotImplemented is returned by operations that are declared but
	// not supported.
	ErrNotImplemented = errors.New("not implemented")
)
