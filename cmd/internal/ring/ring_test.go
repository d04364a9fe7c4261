// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ring

import (
	"reflect"
	"testing"
)

var windowTests = []struct {
	name string
	ops  func() any
	want any
}{
	{
		name: "new_4_uint16",
		ops: func() any {
			return NewWindow[uint16](4)
		},
		want: &Window[uint16]{data: make([]uint16, 4)},
	},
	{
		name: "new_4_uint16_write_2",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2)
			return w
		},
		want: &Window[uint16]{data: []uint16{1, 2, 0, 0}, start: 0, n: 2},
	},
	{
		name: "new_4_uint16_write_2_1",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2)
			w.Write(3)
			return w
		},
		want: &Window[uint16]{data: []uint16{1, 2, 3, 0}, start: 0, n: 3},
	},
	{
		name: "new_4_uint16_write_2_3",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2)
			w.Write(3, 4, 5)
			return w
		},
		want: &Window[uint16]{data: []uint16{5, 2, 3, 4}, start: 1, n: 4},
	},
	{
		name: "new_4_uint16_write_5",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2, 3, 4, 5)
			return w
		},
		want: &Window[uint16]{data: []uint16{2, 3, 4, 5}, start: 0, n: 4},
	},
	{
		name: "new_4_uint16_write_3_3_values",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2, 3)
			w.Write(4, 5, 6)
			return w.Values()
		},
		want: []uint16{3, 4, 5, 6},
	},
	{
		name: "new_4_uint16_write_3_reset_1",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2, 3)
			w.Reset()
			w.Write(9)
			return w.Values()
		},
		want: []uint16{9},
	},
	{
		name: "copy_short_dst",
		ops: func() any {
			w := NewWindow[uint16](4)
			w.Write(1, 2, 3, 4, 5, 6)
			var buf [2]uint16
			n := w.CopyTo(buf[:])
			return buf[:n]
		},
		want: []uint16{3, 4},
	},
	{
		name: "start_one_before_end",
		ops: func() any {
			var buf [10]uint16
			w := &Window[uint16]{
				data:  []uint16{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8},
				start: 7, n: 4,
			}
			n := w.CopyTo(buf[:])
			return buf[:n]
		},
		want: []uint16{0x8, 0x1, 0x2, 0x3},
	},
	{
		name: "zero_size",
		ops: func() any {
			w := NewWindow[uint16](0)
			w.Write(1, 2)
			return w.Values()
		},
		want: []uint16{},
	},
}

func TestWindow(t *testing.T) {
	for _, test := range windowTests {
		t.Run(test.name, func(t *testing.T) {
			got := test.ops()
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("expected result:\ngot: %#v\nwant:%#v", got, test.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	w := NewWindow[uint16](3)
	if _, ok := Mean(w); ok {
		t.Error("expected no mean for empty window")
	}
	w.Write(800, 1000, 1200, 1400)
	got, ok := Mean(w)
	if !ok {
		t.Fatal("expected mean for non-empty window")
	}
	if want := 1200.0; got != want {
		t.Errorf("unexpected mean: got:%v want:%v", got, want)
	}
}
