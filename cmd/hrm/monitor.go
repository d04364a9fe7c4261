// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kortschak/polarhrm/cmd/internal/ring"
	"github.com/kortschak/polarhrm/heart"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print live heart rate measurements",
	Long: `Subscribe to heart rate measurement notifications and print each
measurement with its RR intervals and the mean RR interval over a
sliding window.`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, log, dev, err := open(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	p := newRatePrinter(cmd.OutOrStdout(), cfg.RRWindow)
	hr := heart.NewRateListener(dev, log)
	err = hr.Start(p.print)
	if err != nil {
		return err
	}
	defer hr.Close()

	<-cmd.Context().Done()
	return nil
}

// ratePrinter prints heart rate measurements with a running mean of
// the most recent RR intervals.
type ratePrinter struct {
	mu sync.Mutex
	w  io.Writer
	rr *ring.Window[uint16]

	hr, rrCol, contact *color.Color
}

func newRatePrinter(w io.Writer, window int) *ratePrinter {
	return &ratePrinter{
		w:       w,
		rr:      ring.NewWindow[uint16](window),
		hr:      color.New(color.FgRed, color.Bold),
		rrCol:   color.New(color.FgCyan),
		contact: color.New(color.FgGreen),
	}
}

func (p *ratePrinter) print(r heart.Rate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rr.Write(r.RR...)

	var b strings.Builder
	fmt.Fprintf(&b, "%s bpm", p.hr.Sprint(r.HR))
	if r.RR != nil {
		rr := make([]string, len(r.RR))
		for i, d := range r.Intervals() {
			rr[i] = d.Round(time.Millisecond).String()
		}
		fmt.Fprintf(&b, " rr=[%s]", p.rrCol.Sprint(strings.Join(rr, " ")))
	}
	if mean, ok := ring.Mean(p.rr); ok {
		d := time.Duration(mean * float64(time.Second) / 1024)
		fmt.Fprintf(&b, " mean_rr=%s", p.rrCol.Sprint(d.Round(time.Millisecond)))
	}
	if r.EnergyExpended {
		fmt.Fprintf(&b, " energy=%dkJ", r.Energy)
	}
	if r.Contact {
		fmt.Fprintf(&b, " %s", p.contact.Sprint("contact"))
	}
	fmt.Fprintln(p.w, b.String())
}
