// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads_test

import (
	"testing"

	"github.com/ava-labs/crossroads"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := crossroads.NewZapLogger(zap.New(core))

	logger.Trace("trace", zap.Int("n", 1))
	logger.Verbo("verbo")
	logger.Info("info")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, int64(1), entries[0].ContextMap()["n"])
	require.Equal(t, zapcore.DebugLevel, entries[1].Level)
	require.Equal(t, zapcore.InfoLevel, entries[2].Level)
}

func TestIntersectionWithZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	in, err := crossroads.NewIntersection(crossroads.Config{
		Limit:  crossroads.DefaultLimit,
		Logger: crossroads.NewZapLogger(zap.New(core)),
	})
	require.NoError(t, err)

	in.BeforeEntry(crossroads.East, crossroads.South)
	in.AfterExit(crossroads.East, crossroads.South)
	in.Close()

	require.Equal(t, 1, logs.FilterMessage("Idle intersection claimed").Len())
	require.Equal(t, 1, logs.FilterMessage("Vehicle admitted").Len())
	require.Equal(t, 1, logs.FilterMessage("Intersection drained with nobody waiting").Len())
}
