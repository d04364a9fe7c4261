// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/kortschak/polarhrm"
)

// SettingType specifies PMD measurement settings.
type SettingType uint8

const (
	SampleRateSetting       SettingType = 0
	ResolutionSetting       SettingType = 1
	RangeUnitSetting        SettingType = 2
	RangeMilliUnitSetting   SettingType = 3
	ChannelsSetting         SettingType = 4
	ConversionFactorSetting SettingType = 5
	UnknownSetting          SettingType = 0xff
)

func (t SettingType) String() string {
	switch t {
	case SampleRateSetting:
		return "sample_rate"
	case ResolutionSetting:
		return "resolution"
	case RangeUnitSetting:
		return "range"
	case RangeMilliUnitSetting:
		return "range_milli"
	case ChannelsSetting:
		return "channels"
	case ConversionFactorSetting:
		return "factor"
	default:
		return "unknown"
	}
}

const headerSize = 2

var settingTypes = [...]struct {
	typ  byte
	size byte
}{
	SampleRateSetting:       {typ: uint16Kind, size: uint16Size},
	ResolutionSetting:       {typ: uint16Kind, size: uint16Size},
	RangeUnitSetting:        {typ: uint16Kind, size: uint16Size},
	RangeMilliUnitSetting:   {typ: uint32Kind, size: uint32Size},
	ChannelsSetting:         {typ: uint8Kind, size: uint8Size},
	ConversionFactorSetting: {typ: float32Kind, size: float32Size},
}

const (
	uint8Kind = iota + 1
	uint16Kind
	uint32Kind
	float32Kind
)

// Value sizes in bytes.
const (
	uint8Size   = 1
	uint16Size  = 2
	uint32Size  = 4
	float32Size = 4
)

// Setting is a PMD measurement setting: a setting type and the set of
// values the sensor offers for it.
type Setting interface {
	// ID returns the setting's type.
	ID() SettingType
	// Size returns the number of bytes the setting
	// occupies in a PMD control point frame.
	Size() int
}

// ParseSettings decodes the settings payload of a PMD control point
// response. The payload is a sequence of type, count and count values,
// with the value width determined by the type.
func ParseSettings(data []byte) ([]Setting, error) {
	settings := []Setting{}
	for len(data) != 0 {
		if uint(data[0]) >= uint(len(settingTypes)) || settingTypes[data[0]].typ == 0 {
			return nil, fmt.Errorf("%w: unknown setting type: %#x", polarhrm.ErrMalformedFrame, data[0])
		}
		var (
			set Setting
			err error
		)
		switch typ := settingTypes[data[0]].typ; typ {
		case uint8Kind:
			var s Uint8
			err = s.UnmarshalBinary(data)
			set = s
		case uint16Kind:
			var s Uint16
			err = s.UnmarshalBinary(data)
			set = s
		case uint32Kind:
			var s Uint32
			err = s.UnmarshalBinary(data)
			set = s
		case float32Kind:
			var s Float32
			err = s.UnmarshalBinary(data)
			set = s
		}
		if err != nil {
			return nil, err
		}
		data = data[set.Size():]
		settings = append(settings, set)
	}
	return settings, nil
}

// header returns the value count of the setting at the start of data,
// checking that data holds all the values.
func header(data []byte, size int) (int, error) {
	if len(data) < headerSize {
		return 0, fmt.Errorf("%w: setting header: %w", polarhrm.ErrMalformedFrame, io.ErrUnexpectedEOF)
	}
	n := int(data[1])
	if len(data) < headerSize+n*size {
		return 0, fmt.Errorf("%w: setting %s values: %w", polarhrm.ErrMalformedFrame, SettingType(data[0]), io.ErrUnexpectedEOF)
	}
	return n, nil
}

// Uint8 is an 8-bit integer setting.
type Uint8 struct {
	Type SettingType
	Val  []uint8
}

func (w Uint8) ID() SettingType { return w.Type }
func (w Uint8) Size() int       { return headerSize + len(w.Val)*uint8Size }

func (w *Uint8) UnmarshalBinary(data []byte) error {
	n, err := header(data, uint8Size)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]uint8, n)
	copy(w.Val, data[headerSize:])
	return nil
}

// Uint16 is a 16-bit integer setting.
type Uint16 struct {
	Type SettingType
	Val  []uint16
}

func (w Uint16) ID() SettingType { return w.Type }
func (w Uint16) Size() int       { return headerSize + len(w.Val)*uint16Size }

func (w *Uint16) UnmarshalBinary(data []byte) error {
	n, err := header(data, uint16Size)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]uint16, n)
	data = data[headerSize:]
	for i := range w.Val {
		w.Val[i] = binary.LittleEndian.Uint16(data)
		data = data[uint16Size:]
	}
	return nil
}

// Uint32 is a 32-bit integer setting.
type Uint32 struct {
	Type SettingType
	Val  []uint32
}

func (w Uint32) ID() SettingType { return w.Type }
func (w Uint32) Size() int       { return headerSize + len(w.Val)*uint32Size }

func (w *Uint32) UnmarshalBinary(data []byte) error {
	n, err := header(data, uint32Size)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]uint32, n)
	data = data[headerSize:]
	for i := range w.Val {
		w.Val[i] = binary.LittleEndian.Uint32(data)
		data = data[uint32Size:]
	}
	return nil
}

// Float32 is a 32-bit floating point setting.
type Float32 struct {
	Type SettingType
	Val  []float32
}

func (w Float32) ID() SettingType { return w.Type }
func (w Float32) Size() int       { return headerSize + len(w.Val)*float32Size }

func (w *Float32) UnmarshalBinary(data []byte) error {
	n, err := header(data, float32Size)
	if err != nil {
		return err
	}
	w.Type = SettingType(data[0])
	w.Val = make([]float32, n)
	data = data[headerSize:]
	for i := range w.Val {
		w.Val[i] = math.Float32frombits(binary.LittleEndian.Uint32(data))
		data = data[float32Size:]
	}
	return nil
}
