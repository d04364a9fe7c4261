// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heart

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/internal/linktest"
)

var unmarshalTests = []struct {
	name string
	data []byte
	want Rate
}{
	{
		name: "uint8_hr_only",
		data: []byte{0x00, 0x3c},
		want: Rate{HR: 60},
	},
	{
		name: "all_fields",
		data: []byte{0x1f, 0x3c, 0x00, 0x10, 0x00, 0xe8, 0x03},
		want: Rate{
			HR:               60,
			Energy:           16,
			EnergyExpended:   true,
			RR:               []uint16{1000},
			Contact:          true,
			ContactSupported: true,
		},
	},
	{
		// Energy bit is clear so the energy bytes are read as RR.
		name: "uint16_hr_contact_rr",
		data: []byte{0x17, 0x3c, 0x00, 0x10, 0x00, 0xe8, 0x03},
		want: Rate{
			HR:               60,
			RR:               []uint16{16, 1000},
			Contact:          true,
			ContactSupported: true,
		},
	},
	{
		name: "contact_detected_unsupported",
		data: []byte{0x02, 0x48},
		want: Rate{HR: 72, Contact: true},
	},
	{
		name: "contact_supported_not_detected",
		data: []byte{0x04, 0x48},
		want: Rate{HR: 72, Contact: true, ContactSupported: true},
	},
	{
		name: "rr_flag_no_intervals",
		data: []byte{0x10, 0x48},
		want: Rate{HR: 72, RR: []uint16{}},
	},
	{
		name: "rr_odd_trailing_byte",
		data: []byte{0x10, 0x48, 0x00, 0x04, 0x01},
		want: Rate{HR: 72, RR: []uint16{1024}},
	},
	{
		name: "trailing_bytes_ignored",
		data: []byte{0x00, 0x48, 0xaa, 0xbb, 0xcc},
		want: Rate{HR: 72},
	},
	{
		name: "energy_uint16_hr",
		data: []byte{0x09, 0x2c, 0x01, 0xff, 0xff},
		want: Rate{HR: 300, Energy: 0xffff, EnergyExpended: true},
	},
}

func TestUnmarshalBinary(t *testing.T) {
	for _, test := range unmarshalTests {
		t.Run(test.name, func(t *testing.T) {
			var got Rate
			err := got.UnmarshalBinary(test.data)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)

			// Decoding is pure, so a second decode is identical.
			var again Rate
			require.NoError(t, again.UnmarshalBinary(test.data))
			assert.Equal(t, got, again)
		})
	}
}

var malformedTests = []struct {
	name string
	data []byte
}{
	{name: "nil", data: nil},
	{name: "empty", data: []byte{}},
	{name: "flags_only", data: []byte{0x00}},
	{name: "uint16_hr_missing", data: []byte{0x01}},
	{name: "uint16_hr_short", data: []byte{0x01, 0x3c}},
	{name: "energy_missing", data: []byte{0x08, 0x3c}},
	{name: "energy_short", data: []byte{0x08, 0x3c, 0x10}},
	{name: "uint16_hr_energy_short", data: []byte{0x19, 0x3c, 0x00, 0x10}},
}

func TestUnmarshalBinaryMalformed(t *testing.T) {
	for _, test := range malformedTests {
		t.Run(test.name, func(t *testing.T) {
			got := Rate{HR: 1}
			err := got.UnmarshalBinary(test.data)
			require.ErrorIs(t, err, polarhrm.ErrMalformedFrame)
			assert.Equal(t, Rate{HR: 1}, got, "partial result written on error")
		})
	}
}

func TestFlagPresence(t *testing.T) {
	for flags := 0; flags < 0x20; flags++ {
		data := []byte{byte(flags), 0x50, 0x00, 0x20, 0x00, 0x00, 0x04}
		var m Rate
		require.NoError(t, m.UnmarshalBinary(data), "flags %#x", flags)

		if flags&flagHR16 == 0 {
			assert.Equal(t, uint16(0x50), m.HR, "flags %#x", flags)
		} else {
			assert.Equal(t, uint16(0x0050), m.HR, "flags %#x", flags)
		}
		assert.Equal(t, flags&flagEnergy != 0, m.EnergyExpended, "flags %#x", flags)
		if !m.EnergyExpended {
			assert.Zero(t, m.Energy, "flags %#x", flags)
		}
		if flags&flagRR == 0 {
			assert.Empty(t, m.RR, "flags %#x", flags)
		} else {
			assert.NotEmpty(t, m.RR, "flags %#x", flags)
		}
		assert.Equal(t, flags&contactMask != 0, m.Contact, "flags %#x", flags)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, want := range []Rate{
		{HR: 60},
		{HR: 255, Contact: true},
		{HR: 256, Contact: true, ContactSupported: true},
		{HR: 180, Energy: 1234, EnergyExpended: true},
		{HR: 0x1234, Energy: 7, EnergyExpended: true, RR: []uint16{800, 812, 790}},
		{HR: 45, RR: []uint16{}},
	} {
		data, err := want.MarshalBinary()
		require.NoError(t, err)
		var got Rate
		require.NoError(t, got.UnmarshalBinary(data))
		assert.Equal(t, want, got)
	}
}

func TestRoundTripContactSupported(t *testing.T) {
	data, err := Rate{HR: 70, ContactSupported: true}.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 70}, data)

	var got Rate
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, Rate{HR: 70, Contact: true, ContactSupported: true}, got)
}

func TestIntervals(t *testing.T) {
	m := Rate{RR: []uint16{1024, 512}}
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond}, m.Intervals())
	assert.Nil(t, Rate{}.Intervals())
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRateListener(t *testing.T) {
	l := linktest.New()
	r := NewRateListener(l, quietLogger())

	var got []Rate
	require.NoError(t, r.Start(func(m Rate) {
		if m.HR == 99 {
			panic("handler failure")
		}
		got = append(got, m)
	}))
	require.True(t, l.Subscribed(RateMeasurementID))

	assert.True(t, l.Notify(RateMeasurementID, []byte{0x00, 0x3c}))
	assert.True(t, l.Notify(RateMeasurementID, []byte{0x01}))       // malformed, dropped
	assert.True(t, l.Notify(RateMeasurementID, []byte{0x00, 0x63})) // handler panics
	assert.True(t, l.Notify(RateMeasurementID, []byte{0x06, 0x40}))
	assert.Equal(t, []Rate{
		{HR: 60},
		{HR: 64, Contact: true, ContactSupported: true},
	}, got)

	require.NoError(t, r.Stop())
	assert.False(t, l.Subscribed(RateMeasurementID))
	require.NoError(t, r.Stop(), "second stop")
	require.NoError(t, r.Close())
}

func TestRateListenerTransportFailure(t *testing.T) {
	l := linktest.New()
	l.SubscribeErr[RateMeasurementID] = errors.New("no such characteristic")
	r := NewRateListener(l, quietLogger())

	err := r.Start(func(Rate) {})
	require.ErrorIs(t, err, polarhrm.ErrTransport)

	// Never started, so stopping does not touch the link.
	l.UnsubscribeErr = errors.New("unexpected unsubscribe")
	require.NoError(t, r.Stop())
}
