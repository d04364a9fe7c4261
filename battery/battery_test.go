// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package battery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/polarhrm"
	"github.com/kortschak/polarhrm/internal/linktest"
)

func TestLevel(t *testing.T) {
	l := linktest.New()
	l.SetValue(LevelCharacteristicID, []byte{87})
	got, err := Level(l)
	require.NoError(t, err)
	assert.Equal(t, 87, got)

	l.SetValue(LevelCharacteristicID, []byte{})
	_, err = Level(l)
	assert.ErrorIs(t, err, polarhrm.ErrMalformedFrame)

	l.SetValue(LevelCharacteristicID, []byte{101})
	_, err = Level(l)
	assert.ErrorIs(t, err, polarhrm.ErrMalformedFrame)

	l.ReadErr = errors.New("not connected")
	_, err = Level(l)
	assert.ErrorIs(t, err, polarhrm.ErrTransport)
}
