// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"fmt"

	"github.com/kortschak/polarhrm"
)

// Control point response layout.
const (
	responseCode   = 0xf0
	responseHeader = 5 // code, op, measurement type, status, more

	statusOffset = 3
)

// Status is a control point response status.
type Status uint8

const StatusSuccess Status = 0

var statusText = [...]string{
	"success",
	"invalid op code",
	"invalid measurement type",
	"not supported",
	"invalid length",
	"invalid parameter",
	"already in state",
	"invalid resolution",
	"invalid sample rate",
	"invalid range",
	"invalid MTU",
	"invalid number of channels",
	"invalid state",
	"device in charger",
}

func (s Status) String() string {
	if int(s) < len(statusText) {
		return statusText[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// ResponseError is a non-success control point response.
type ResponseError struct {
	Command Command
	Measure MeasureType
	Status  Status
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Command, e.Measure, e.Status)
}

// ParseSettingsResponse validates a control point response to a settings
// command and decodes its settings. An error status from the sensor is
// returned as a *ResponseError.
func ParseSettingsResponse(com Command, measure MeasureType, data []byte) ([]Setting, error) {
	if len(data) < statusOffset+1 {
		return nil, fmt.Errorf("%w: short response: %#x", polarhrm.ErrMalformedFrame, data)
	}
	if data[0] != responseCode || Command(data[1]) != com || MeasureType(data[2]&0x7f) != measure {
		return nil, fmt.Errorf("%w: invalid response to %s %s: %#x", polarhrm.ErrMalformedFrame, com, measure, data)
	}
	if status := Status(data[statusOffset]); status != StatusSuccess {
		return nil, &ResponseError{Command: com, Measure: measure, Status: status}
	}
	if len(data) < responseHeader {
		return nil, fmt.Errorf("%w: short response: %#x", polarhrm.ErrMalformedFrame, data)
	}
	return ParseSettings(data[responseHeader:])
}
