// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/ava-labs/crossroads"
	"github.com/stretchr/testify/require"
)

func TestParseOrigins(t *testing.T) {
	origins, err := parseOrigins("n,East, s")
	require.NoError(t, err)
	require.Equal(t, []crossroads.Direction{crossroads.North, crossroads.East, crossroads.South}, origins)

	_, err = parseOrigins("n,,w")
	require.ErrorIs(t, err, crossroads.ErrUnknownDirection)
}

func TestRun(t *testing.T) {
	err := run([]string{
		"-vehicles", "20",
		"-origins", "w",
		"-cross-time", "100us",
		"-jitter", "100us",
		"-log-level", "error",
	})
	require.NoError(t, err)
}

func TestRunRejectsBadFlags(t *testing.T) {
	require.Error(t, run([]string{"-limit", "0", "-log-level", "error"}))
	require.ErrorIs(t, run([]string{"-origins", "up"}), crossroads.ErrUnknownDirection)
	require.Error(t, run([]string{"-log-level", "loud"}))
}
