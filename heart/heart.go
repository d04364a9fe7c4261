// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heart implements handling of the standard 180d Bluetooth
// heart rate service notifications.
package heart

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/link"
)

const (
	RateServiceID     = "0000180d-0000-1000-8000-00805f9b34fb"
	RateMeasurementID = "00002a37-0000-1000-8000-00805f9b34fb"
)

// RateListener implements handling of heart rate notifications.
type RateListener struct {
	link link.Link
	log  logrus.FieldLogger

	mu        sync.Mutex
	listening bool
}

// NewRateListener returns a new RateListener for the provided link.
// Notifications are not enabled until Start is called.
func NewRateListener(l link.Link, log logrus.FieldLogger) *RateListener {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RateListener{link: l, log: log}
}

// Start enables heart rate notifications from the connected sensor.
// The h function is called with each decoded measurement. Frames that
// fail to decode are logged and dropped, and a panic in h is recovered
// and logged, so neither ends the subscription.
func (l *RateListener) Start(h func(Rate)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.link.Subscribe(RateMeasurementID, func(buf []byte) {
		l.handle(buf, h)
	})
	if err != nil {
		return link.Transport("subscribe", RateMeasurementID, err)
	}
	l.listening = true
	return nil
}

func (l *RateListener) handle(buf []byte, h func(Rate)) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("heart rate handler failed")
		}
	}()
	var m Rate
	err := m.UnmarshalBinary(buf)
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"data":  fmt.Sprintf("%#x", buf),
			"error": err,
		}).Warn("failed to decode heart rate measurement")
		return
	}
	if h != nil {
		h(m)
	}
}

// Stop disables heart rate notifications. It is a no-op if notifications
// are not enabled.
func (l *RateListener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening {
		return nil
	}
	err := l.link.Unsubscribe(RateMeasurementID)
	if err != nil {
		return link.Transport("unsubscribe", RateMeasurementID, err)
	}
	l.listening = false
	return nil
}

// Close disables heart rate notifications from the connected sensor.
func (l *RateListener) Close() error { return l.Stop() }

// Rate is a heart rate measurement.
type Rate struct {
	HR               uint16
	RR               []uint16 // 1/1024 s
	Energy           uint16   // kJ
	EnergyExpended   bool
	Contact          bool
	ContactSupported bool
}

// Flags Field bits.
const (
	flagHR16        = 0x01
	flagContact     = 0x02
	flagContactSupp = 0x04
	flagEnergy      = 0x08
	flagRR          = 0x10

	contactMask = flagContact | flagContactSupp
)

// Intervals returns the RR intervals as durations.
func (m Rate) Intervals() []time.Duration {
	if m.RR == nil {
		return nil
	}
	rr := make([]time.Duration, len(m.RR))
	for i, v := range m.RR {
		rr[i] = time.Duration(v) * time.Second / 1024
	}
	return rr
}

// UnmarshalBinary decodes a Heart Rate Measurement characteristic value.
// Contact is set when either contact bit is set, so a sensor that
// supports contact detection but reports no contact decodes with Contact
// true; ContactSupported reflects the support bit alone.
func (m *Rate) UnmarshalBinary(data []byte) error {
	// https://www.bluetooth.com/specifications/specs/heart-rate-service-1-0/

	// 3.1.1.1. Flags Field
	// | 0x10 | 0x8 | 0x4  0x2 | 0x1 |
	// |  rr  | nrg | scs  cnt | fmt |
	if len(data) == 0 {
		return fmt.Errorf("%w: empty heart rate measurement", polarhrm.ErrMalformedFrame)
	}
	flags := data[0]
	offset := 1

	var hr uint16
	if flags&flagHR16 != 0 {
		if len(data) < offset+2 {
			return fmt.Errorf("%w: short uint16 heart rate: %#x", polarhrm.ErrMalformedFrame, data)
		}
		hr = binary.LittleEndian.Uint16(data[offset:])
		offset += 2
	} else {
		if len(data) < offset+1 {
			return fmt.Errorf("%w: short uint8 heart rate: %#x", polarhrm.ErrMalformedFrame, data)
		}
		hr = uint16(data[offset])
		offset++
	}

	var energy uint16
	energyExpended := flags&flagEnergy != 0
	if energyExpended {
		if len(data) < offset+2 {
			return fmt.Errorf("%w: short energy expended: %#x", polarhrm.ErrMalformedFrame, data)
		}
		energy = binary.LittleEndian.Uint16(data[offset:])
		offset += 2
	}

	var rr []uint16
	if flags&flagRR != 0 {
		rrData := data[offset:]
		rr = make([]uint16, 0, len(rrData)/2)
		for len(rrData) >= 2 {
			rr = append(rr, binary.LittleEndian.Uint16(rrData))
			rrData = rrData[2:]
		}
	}

	*m = Rate{
		HR:               hr,
		RR:               rr,
		Energy:           energy,
		EnergyExpended:   energyExpended,
		Contact:          flags&contactMask != 0,
		ContactSupported: flags&flagContactSupp != 0,
	}
	return nil
}

// MarshalBinary encodes m as a Heart Rate Measurement characteristic
// value. The heart rate is written as a uint16 only when it does not fit
// in a byte. Since UnmarshalBinary sets Contact from either contact bit,
// a Rate with ContactSupported set and Contact clear decodes with Contact
// set.
func (m Rate) MarshalBinary() ([]byte, error) {
	var flags byte
	if m.HR > 0xff {
		flags |= flagHR16
	}
	if m.Contact {
		flags |= flagContact
	}
	if m.ContactSupported {
		flags |= flagContactSupp
	}
	if m.EnergyExpended {
		flags |= flagEnergy
	}
	if m.RR != nil {
		flags |= flagRR
	}

	buf := make([]byte, 1, 1+2+2+2*len(m.RR))
	buf[0] = flags
	if flags&flagHR16 != 0 {
		buf = binary.LittleEndian.AppendUint16(buf, m.HR)
	} else {
		buf = append(buf, byte(m.HR))
	}
	if m.EnergyExpended {
		buf = binary.LittleEndian.AppendUint16(buf, m.Energy)
	}
	for _, v := range m.RR {
		buf = binary.LittleEndian.AppendUint16(buf, v)
	}
	return buf, nil
}
