// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// configureLogger returns a logger writing to w at the named level.
func configureLogger(w io.Writer, level string) (*logrus.Logger, error) {
	var lvl logrus.Level
	switch level {
	case "debug":
		lvl = logrus.DebugLevel
	case "info":
		lvl = logrus.InfoLevel
	case "warn":
		lvl = logrus.WarnLevel
	case "error":
		lvl = logrus.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return log, nil
}
