// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/internal/correlate"
	"github.com/kortschak/polarhrm/link"
)

// Listener implements the PMD control channel.
type Listener struct {
	link link.Link
	log  logrus.FieldLogger
	cp   *correlate.Correlator

	mu       sync.Mutex
	enabled  bool
	features Features
	handler  func([]byte)
}

// NewListener returns a new Listener for the provided link. Control point
// requests without a context deadline are bounded by timeout if it is
// positive. The control channel is not enabled until EnableControl is
// called.
func NewListener(l link.Link, log logrus.FieldLogger, timeout time.Duration) *Listener {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("service", "pmd")
	return &Listener{
		link: l,
		log:  log,
		cp:   correlate.New(l, ControlPointID, timeout, log),
	}
}

// EnableControl enables control point and data notifications and reads
// the sensor's feature set from the control point. It is a no-op if the
// control channel is already enabled.
func (l *Listener) EnableControl() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enabled {
		return nil
	}

	err := l.link.Subscribe(ControlPointID, l.cp.Notify)
	if err != nil {
		return link.Transport("subscribe", ControlPointID, err)
	}
	err = l.link.Subscribe(DataID, l.dispatch)
	if err != nil {
		l.rollback(ControlPointID)
		return link.Transport("subscribe", DataID, err)
	}

	// Section 5.1 Figure 1 shows 17 bytes, but this
	// is not otherwise documented and cp does not have
	// an MTU characteristic. The first two bytes are
	// the only relevant data for our use.
	buf, err := l.link.Read(ControlPointID)
	if err != nil {
		l.rollback(DataID, ControlPointID)
		return link.Transport("read", ControlPointID, err)
	}
	var feats Features
	if len(buf) < len(feats) {
		l.log.WithField("data", fmt.Sprintf("%#x", buf)).Warn("device features too short")
	} else {
		copy(feats[:], buf)
	}
	l.log.WithFields(logrus.Fields{
		"data":     fmt.Sprintf("%#x", buf),
		"features": feats,
	}).Debug("read control point")

	l.features = feats
	l.enabled = true
	return nil
}

// rollback unsubscribes from chars after a failed EnableControl.
func (l *Listener) rollback(chars ...string) {
	for _, c := range chars {
		err := l.link.Unsubscribe(c)
		if err != nil {
			l.log.WithFields(logrus.Fields{
				"characteristic": c,
				"error":          err,
			}).Warn("failed to unsubscribe during control channel rollback")
		}
	}
}

// DisableControl disables control point and data notifications. It is a
// no-op if the control channel is not enabled.
func (l *Listener) DisableControl() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return nil
	}
	err := errors.Join(
		l.link.Unsubscribe(ControlPointID),
		l.link.Unsubscribe(DataID),
	)
	l.enabled = false
	if err != nil {
		return fmt.Errorf("%w: disable control channel: %w", polarhrm.ErrTransport, err)
	}
	return nil
}

// Close disables the control channel.
func (l *Listener) Close() error { return l.DisableControl() }

// Features returns the set of features supported by the connected sensor
// as read by the last call to EnableControl.
func (l *Listener) Features() Features {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.features
}

// SetDataHandler sets the handler called with each PMD data channel
// notification. Notifications are logged and dropped when h is nil.
func (l *Listener) SetDataHandler(h func([]byte)) {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()
}

func (l *Listener) dispatch(buf []byte) {
	if len(buf) == 0 {
		return
	}
	l.mu.Lock()
	handle := l.handler
	l.mu.Unlock()
	if handle == nil {
		l.log.WithFields(logrus.Fields{
			"type": MeasureType(buf[sampleTypeOffset]),
			"len":  len(buf),
		}).Debug("pmd data")
		return
	}
	handle(buf)
}

// Settings returns the available settings for the measurement type
// of the sensor the Listener is connected to.
func (l *Listener) Settings(ctx context.Context, m MeasureType) ([]Setting, error) {
	return l.querySettings(ctx, MeasureSettings, m)
}

// FullSettings returns the full range of settings available for the
// measurement type when the sensor is in SDK mode.
func (l *Listener) FullSettings(ctx context.Context, m MeasureType) ([]Setting, error) {
	return l.querySettings(ctx, SDKModeSettings, m)
}

func (l *Listener) querySettings(ctx context.Context, com Command, m MeasureType) ([]Setting, error) {
	l.mu.Lock()
	enabled := l.enabled
	l.mu.Unlock()
	if !enabled {
		return nil, fmt.Errorf("%w: %s %s: control channel not enabled", polarhrm.ErrTransport, com, m)
	}

	msg, err := setCommand{
		Command: com,
		Record:  Online,
		Measure: m,
	}.MarshalBinary()
	if err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"command": com,
		"type":    m,
	}).Debug("requesting stream settings")
	resp, err := l.cp.Request(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", com, m, err)
	}
	return ParseSettingsResponse(com, m, resp)
}

func notImplemented(op string) error {
	return fmt.Errorf("%w: %s", polarhrm.ErrNotImplemented, op)
}

// StartECG is not implemented.
func (l *Listener) StartECG(ctx context.Context, settings ...Setting) error {
	return notImplemented("start ecg stream")
}

// StartAcc is not implemented.
func (l *Listener) StartAcc(ctx context.Context, settings ...Setting) error {
	return notImplemented("start acc stream")
}

// StartGyro is not implemented.
func (l *Listener) StartGyro(ctx context.Context, settings ...Setting) error {
	return notImplemented("start gyro stream")
}

// StartMagnetometer is not implemented.
func (l *Listener) StartMagnetometer(ctx context.Context, settings ...Setting) error {
	return notImplemented("start magnetometer stream")
}

// StartPPG is not implemented.
func (l *Listener) StartPPG(ctx context.Context, settings ...Setting) error {
	return notImplemented("start ppg stream")
}

// StartPPI is not implemented.
func (l *Listener) StartPPI(ctx context.Context, settings ...Setting) error {
	return notImplemented("start ppi stream")
}

// EnableSDKMode is not implemented.
func (l *Listener) EnableSDKMode(ctx context.Context) error {
	return notImplemented("enable sdk mode")
}

// DisableSDKMode is not implemented.
func (l *Listener) DisableSDKMode(ctx context.Context) error {
	return notImplemented("disable sdk mode")
}
