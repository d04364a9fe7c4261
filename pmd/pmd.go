// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package PMD implements interaction with Polar Measurement Data
// Bluetooth services.
//
// Technical documentation for the PMD protocols are available from the
// [Polar BLE SDK] repository.
//
// [Polar BLE SDK]: https://github.com/polarofficial/polar-ble-sdk/tree/master/technical_documentation
package pmd

import (
	"fmt"
	"strings"
)

// Service and characteristic identifiers.
const (
	ServiceID      = "fb005c80-02e7-f387-1cad-8acd2d8df0c8"
	ControlPointID = "fb005c81-02e7-f387-1cad-8acd2d8df0c8"
	DataID         = "fb005c82-02e7-f387-1cad-8acd2d8df0c8"
)

// Features is the a set of supported PMD features.
type Features [2]byte

func (f Features) String() string {
	if f[0] != 0xf {
		return fmt.Sprintf("%#x", [2]byte(f))
	}
	var s strings.Builder
	for b := 1; b < 256; b <<= 1 {
		if f[1]&byte(b) != 0 {
			if s.Len() != 0 {
				s.WriteByte('|')
			}
			s.WriteString(Support(b).String())
		}
	}
	return s.String()
}

// Has returns whether the feature set includes s.
func (f Features) Has(s Support) bool {
	return f[0] == 0xf && f[1]&byte(s) != 0
}

// Support is the flag set of supported PMD features.
type Support byte

//go:generate go tool golang.org/x/tools/cmd/stringer -type Support -trimprefix Support
const (
	SupportECG          Support = 1 << 0
	SupportPPG          Support = 1 << 1
	SupportAcc          Support = 1 << 2
	SupportPPI          Support = 1 << 3
	SupportBioImpedance Support = 1 << 4
	SupportGyro         Support = 1 << 5
	SupportMag          Support = 1 << 6
)

// FeatureSetting is a sensor feature selector.
type FeatureSetting uint8

const (
	FeatureHR              FeatureSetting = 1
	FeatureDeviceInfo      FeatureSetting = 2
	FeatureBatteryStatus   FeatureSetting = 4
	FeatureSensorStreaming FeatureSetting = 8
	FeatureFileTransfer    FeatureSetting = 16
	FeatureAll             FeatureSetting = 0xff
)

// RecordingInterval is an offline recording sample interval in seconds.
type RecordingInterval uint8

const (
	RecordingInterval1s RecordingInterval = 1
	RecordingInterval5s RecordingInterval = 5
)

// Command is a PMD control point command.
type Command uint8

const (
	MeasureSettings Command = 1
	MeasureStart    Command = 2
	MeasureStop     Command = 3
	SDKModeSettings Command = 4
)

func (c Command) String() string {
	switch c {
	case MeasureSettings:
		return "get measurement settings"
	case MeasureStart:
		return "request measurement start"
	case MeasureStop:
		return "stop measurement"
	case SDKModeSettings:
		return "get sdk mode settings"
	default:
		return fmt.Sprintf("Command(%d)", c)
	}
}

// RecordingType is a PMD recording mode type.
type RecordingType uint8

const (
	Online  RecordingType = 0
	Offline RecordingType = 1
)

// MeasureType is a measurement stream data type.
type MeasureType uint8

// Measurement types. 4 and 7 are reserved.
const (
	ECGType          MeasureType = 0
	PPGType          MeasureType = 1
	AccType          MeasureType = 2
	PPIType          MeasureType = 3
	GyroType         MeasureType = 5
	MagnetometerType MeasureType = 6
	SDKModeType      MeasureType = 9
	LocationType     MeasureType = 10
	PressureType     MeasureType = 11
	TemperatureType  MeasureType = 12

	measurementTypes = 13
)

var measureNames = [measurementTypes]string{
	ECGType:          "ecg",
	PPGType:          "ppg",
	AccType:          "acc",
	PPIType:          "ppi",
	GyroType:         "gyro",
	MagnetometerType: "magn",
	SDKModeType:      "sdk",
	LocationType:     "location",
	PressureType:     "pressure",
	TemperatureType:  "temperature",
}

func (m MeasureType) String() string {
	if int(m) < len(measureNames) && measureNames[m] != "" {
		return measureNames[m]
	}
	return fmt.Sprintf("MeasureType(%d)", m)
}

// ParseMeasureType returns the MeasureType with the given name as
// returned by MeasureType.String.
func ParseMeasureType(name string) (MeasureType, error) {
	name = strings.ToLower(name)
	for i, n := range measureNames {
		if n != "" && n == name {
			return MeasureType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown measurement type: %q", name)
}

// StreamTypes are the measurement types that can be streamed.
var StreamTypes = []MeasureType{ECGType, PPGType, AccType, PPIType, GyroType, MagnetometerType}

// Packet offsets.
const (
	sampleTypeOffset = 0
)

// setCommand specifies the command, and recording and measurement types
// for a control point command.
type setCommand struct {
	Command Command
	Record  RecordingType
	Measure MeasureType
}

func (w setCommand) Size() int { return 2 }

func (w setCommand) write(dst []byte) (int, error) {
	const size = 2
	if len(dst) < size {
		return 0, fmt.Errorf("dst too short")
	}
	dst[0] = byte(w.Command)
	dst[1] = byte(w.Record)<<7 | byte(w.Measure)
	return size, nil
}

// MarshalBinary returns the control point message for w.
func (w setCommand) MarshalBinary() ([]byte, error) {
	msg := make([]byte, w.Size())
	_, err := w.write(msg)
	return msg, err
}
