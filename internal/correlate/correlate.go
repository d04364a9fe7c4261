// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package correlate pairs writes to a control point characteristic with
// the next notification it emits.
//
// The PMD control point has no request identifier in its frames, so at
// most one request may be outstanding. A Correlator serializes callers
// and hands each the first notification that arrives while it holds the
// control point.
package correlate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/link"
)

// Correlator implements request/response over a write and notify
// characteristic pair.
type Correlator struct {
	link    link.Link
	char    string
	timeout time.Duration
	log     logrus.FieldLogger

	gate *semaphore.Weighted

	mu      sync.Mutex
	seq     uint64
	pending *request
}

type request struct {
	seq  uint64
	resp chan []byte
}

// New returns a Correlator writing commands to char on l. If timeout is
// positive it bounds requests whose context has no deadline.
func New(l link.Link, char string, timeout time.Duration, log logrus.FieldLogger) *Correlator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Correlator{
		link:    l,
		char:    char,
		timeout: timeout,
		log:     log,
		gate:    semaphore.NewWeighted(1),
	}
}

// Request writes cmd to the control point, requiring a write response,
// and waits for the next notification passed to Notify. If the deadline
// passes first, the returned error wraps polarhrm.ErrRequestTimeout and
// a notification arriving afterwards is discarded. A write still in
// flight at the deadline keeps the control point held until the link
// returns from it.
func (c *Correlator) Request(ctx context.Context, cmd []byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.gate.Acquire(ctx, 1)
	if err != nil {
		return nil, waitErr(ctx, err)
	}
	req := c.open()
	release := func() {
		c.close(req)
		c.gate.Release(1)
	}
	log := c.log.WithFields(logrus.Fields{
		"seq":     req.seq,
		"command": fmt.Sprintf("%#x", cmd),
	})
	log.Debug("writing control point command")

	written := make(chan error, 1)
	go func() {
		written <- c.link.Write(c.char, cmd, true)
	}()
	select {
	case err = <-written:
	case <-ctx.Done():
		log.Warn("abandoning control point request with write in flight")
		go func() {
			<-written
			release()
		}()
		return nil, waitErr(ctx, ctx.Err())
	}
	defer release()
	if err != nil {
		return nil, link.Transport("write", c.char, err)
	}

	select {
	case resp := <-req.resp:
		log.WithField("response", fmt.Sprintf("%#x", resp)).Debug("received control point response")
		return resp, nil
	case <-ctx.Done():
		log.Warn("abandoning control point request")
		return nil, waitErr(ctx, ctx.Err())
	}
}

func waitErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", polarhrm.ErrRequestTimeout, context.DeadlineExceeded)
	}
	return err
}

// open installs a new pending request, dropping any stale one.
func (c *Correlator) open() *request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.pending = &request{seq: c.seq, resp: make(chan []byte, 1)}
	return c.pending
}

func (c *Correlator) close(req *request) {
	c.mu.Lock()
	if c.pending == req {
		c.pending = nil
	}
	c.mu.Unlock()
}

// Notify is the control point notification handler. It delivers data to
// the waiting request, if there is one, and otherwise drops it. Notify
// does not block and must not be called with the gate held by the caller.
func (c *Correlator) Notify(data []byte) {
	c.mu.Lock()
	req := c.pending
	c.pending = nil
	c.mu.Unlock()
	if req == nil {
		c.log.WithField("data", fmt.Sprintf("%#x", data)).Debug("discarding unsolicited control point notification")
		return
	}
	req.resp <- bytes.Clone(data)
}
