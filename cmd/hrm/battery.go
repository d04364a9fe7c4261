// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kortschak/polarhrm/battery"
)

var batteryCmd = &cobra.Command{
	Use:   "battery",
	Short: "Print the sensor battery level",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, dev, err := open(cmd)
		if err != nil {
			return err
		}
		defer dev.Close()

		level, err := battery.Level(dev)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", level)
		return nil
	},
}
