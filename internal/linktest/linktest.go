// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linktest provides a recording link.Link for tests.
package linktest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/kortschak/polarhrm/link"
)

// Write is a recorded characteristic write.
type Write struct {
	Char string
	Data []byte
	Ack  bool
}

// Link is an in-memory link.Link. The zero value is not usable; use New.
type Link struct {
	mu       sync.Mutex
	handlers map[string]func([]byte)
	values   map[string][]byte
	writes   []Write
	reads    int

	// OnWrite, if not nil, is called after each successful write is
	// recorded and outside of the Link's lock, so it may call Notify.
	// A non-nil return is returned by Write.
	OnWrite func(Write) error

	// WriteErr, ReadErr, SubscribeErr and UnsubscribeErr are returned
	// by the corresponding methods when set.
	WriteErr       error
	ReadErr        error
	SubscribeErr   map[string]error
	UnsubscribeErr error
}

var _ link.Link = (*Link)(nil)

// New returns a new Link with no subscriptions.
func New() *Link {
	return &Link{
		handlers:     make(map[string]func([]byte)),
		values:       make(map[string][]byte),
		SubscribeErr: make(map[string]error),
	}
}

func (l *Link) Write(char string, data []byte, ack bool) error {
	l.mu.Lock()
	if l.WriteErr != nil {
		err := l.WriteErr
		l.mu.Unlock()
		return err
	}
	w := Write{Char: char, Data: bytes.Clone(data), Ack: ack}
	l.writes = append(l.writes, w)
	hook := l.OnWrite
	l.mu.Unlock()
	if hook != nil {
		return hook(w)
	}
	return nil
}

func (l *Link) Read(char string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads++
	if l.ReadErr != nil {
		return nil, l.ReadErr
	}
	v, ok := l.values[char]
	if !ok {
		return nil, fmt.Errorf("no value for %s", char)
	}
	return bytes.Clone(v), nil
}

func (l *Link) Subscribe(char string, h func([]byte)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.SubscribeErr[char]; err != nil {
		return err
	}
	l.handlers[char] = h
	return nil
}

func (l *Link) Unsubscribe(char string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.UnsubscribeErr != nil {
		return l.UnsubscribeErr
	}
	delete(l.handlers, char)
	return nil
}

// SetValue sets the value returned by Read for char.
func (l *Link) SetValue(char string, data []byte) {
	l.mu.Lock()
	l.values[char] = bytes.Clone(data)
	l.mu.Unlock()
}

// Notify delivers data to the handler subscribed to char and reports
// whether there was one.
func (l *Link) Notify(char string, data []byte) bool {
	l.mu.Lock()
	h := l.handlers[char]
	l.mu.Unlock()
	if h == nil {
		return false
	}
	h(data)
	return true
}

// Subscribed reports whether char has a notification handler.
func (l *Link) Subscribed(char string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.handlers[char]
	return ok
}

// Writes returns the writes recorded so far.
func (l *Link) Writes() []Write {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Write(nil), l.writes...)
}

// Reads returns the number of Read calls.
func (l *Link) Reads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reads
}
