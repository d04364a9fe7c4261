// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kortschak/polarhrm/pmd"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Query measurement stream settings",
	Long: `Enable the PMD control channel and query the settings available
for each configured measurement stream type that the sensor supports.
Queries are issued concurrently and serialized on the control point.`,
	RunE: runSettings,
}

func init() {
	settingsCmd.Flags().Bool("full", false, "query full settings rather than the current settings")
}

// streamSupport maps stream types to their feature support flag.
var streamSupport = map[pmd.MeasureType]pmd.Support{
	pmd.ECGType:          pmd.SupportECG,
	pmd.PPGType:          pmd.SupportPPG,
	pmd.AccType:          pmd.SupportAcc,
	pmd.PPIType:          pmd.SupportPPI,
	pmd.GyroType:         pmd.SupportGyro,
	pmd.MagnetometerType: pmd.SupportMag,
}

func runSettings(cmd *cobra.Command, args []string) error {
	cfg, log, dev, err := open(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	full, _ := cmd.Flags().GetBool("full")
	streams, err := cfg.Streams()
	if err != nil {
		return err
	}

	ctrl := pmd.NewListener(dev, log, cfg.RequestTimeout)
	err = ctrl.EnableControl()
	if err != nil {
		return err
	}
	defer ctrl.Close()

	features := ctrl.Features()
	log.WithField("features", features).Info("control channel enabled")

	query := ctrl.Settings
	if full {
		query = ctrl.FullSettings
	}
	results := make([]settingsResult, len(streams))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, m := range streams {
		results[i].measure = m
		if s, ok := streamSupport[m]; ok && !features.Has(s) {
			results[i].unsupported = true
			continue
		}
		g.Go(func() error {
			settings, err := query(ctx, m)
			var respErr *pmd.ResponseError
			if errors.As(err, &respErr) {
				results[i].err = err
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			results[i].settings = settings
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), results)
	return nil
}

type settingsResult struct {
	measure     pmd.MeasureType
	settings    []pmd.Setting
	unsupported bool
	err         error
}

func printSettings(w io.Writer, results []settingsResult) {
	name := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)
	for _, r := range results {
		switch {
		case r.unsupported:
			fmt.Fprintf(w, "%s: %s\n", name.Sprint(r.measure), warn.Sprint("not supported by sensor"))
		case r.err != nil:
			msg := r.err.Error()
			var respErr *pmd.ResponseError
			if errors.As(r.err, &respErr) {
				msg = respErr.Status.String()
			}
			fmt.Fprintf(w, "%s: %s\n", name.Sprint(r.measure), warn.Sprint(msg))
		case len(r.settings) == 0:
			fmt.Fprintf(w, "%s: no settings\n", name.Sprint(r.measure))
		default:
			fmt.Fprintf(w, "%s:\n", name.Sprint(r.measure))
			for _, s := range r.settings {
				fmt.Fprintf(w, "  %s: %s\n", s.ID(), settingValues(s))
			}
		}
	}
}

func settingValues(s pmd.Setting) string {
	var vals []string
	switch s := s.(type) {
	case pmd.Uint8:
		for _, v := range s.Val {
			vals = append(vals, fmt.Sprint(v))
		}
	case pmd.Uint16:
		for _, v := range s.Val {
			vals = append(vals, fmt.Sprint(v))
		}
	case pmd.Uint32:
		for _, v := range s.Val {
			vals = append(vals, fmt.Sprint(v))
		}
	case pmd.Float32:
		for _, v := range s.Val {
			vals = append(vals, fmt.Sprint(v))
		}
	default:
		return fmt.Sprintf("%v", s)
	}
	return strings.Join(vals, " ")
}
