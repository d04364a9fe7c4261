// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ring implements a fixed size sliding window.
package ring

// Window holds the most recent values written to it, up to its size.
// Writing to a full window discards the oldest values.
type Window[T any] struct {
	data  []T
	start int // index of the oldest value
	n     int // number of values held
}

// NewWindow returns a window holding at most n values.
func NewWindow[T any](n int) *Window[T] {
	return &Window[T]{data: make([]T, n)}
}

// Len returns the number of values held.
func (w *Window[T]) Len() int { return w.n }

// Size returns the maximum number of values held.
func (w *Window[T]) Size() int { return len(w.data) }

// Write appends src to the window.
func (w *Window[T]) Write(src ...T) {
	size := len(w.data)
	if size == 0 {
		return
	}
	if len(src) >= size {
		copy(w.data, src[len(src)-size:])
		w.start = 0
		w.n = size
		return
	}
	for _, v := range src {
		end := (w.start + w.n) % size
		w.data[end] = v
		if w.n < size {
			w.n++
		} else {
			w.start = (w.start + 1) % size
		}
	}
}

// CopyTo copies the held values into dst, oldest first, returning the
// number of values copied.
func (w *Window[T]) CopyTo(dst []T) int {
	end := w.start + w.n
	if end <= len(w.data) {
		return copy(dst, w.data[w.start:end])
	}
	n := copy(dst, w.data[w.start:])
	n += copy(dst[n:], w.data[:end-len(w.data)])
	return n
}

// Values returns a copy of the held values, oldest first.
func (w *Window[T]) Values() []T {
	dst := make([]T, w.n)
	w.CopyTo(dst)
	return dst
}

// Reset empties the window.
func (w *Window[T]) Reset() {
	w.start = 0
	w.n = 0
}

// Mean returns the arithmetic mean of the values held by w, and false
// if w is empty.
func Mean[T ~uint8 | ~uint16 | ~uint32 | ~int | ~float64](w *Window[T]) (float64, bool) {
	if w.n == 0 {
		return 0, false
	}
	var sum float64
	for i := range w.n {
		sum += float64(w.data[(w.start+i)%len(w.data)])
	}
	return sum / float64(w.n), true
}
