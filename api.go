// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads

import (
	"go.uber.org/zap"
)

type Logger interface {
	// Log that a fatal error has occurred. The program should likely exit soon
	// after this is called
	Fatal(msg string, fields ...zap.Field)
	// Log that an error has occurred. The program should be able to recover
	// from this error
	Error(msg string, fields ...zap.Field)
	// Log that an event has occurred that may indicate a future error or
	// vulnerability
	Warn(msg string, fields ...zap.Field)
	// Log an event that may be useful for a user to see to measure the progress
	// of the traffic
	Info(msg string, fields ...zap.Field)
	// Log an event that may be useful for understanding the order in which
	// vehicles were admitted
	Trace(msg string, fields ...zap.Field)
	// Log an event that may be useful for a programmer to see when debuging the
	// admission decisions
	Debug(msg string, fields ...zap.Field)
	// Log extremely detailed events that can be useful for inspecting every
	// arrival and departure
	Verbo(msg string, fields ...zap.Field)
}

// Arbiter decides when a vehicle may pass through the intersection.
type Arbiter interface {
	// BeforeEntry blocks until a vehicle arriving from origin may enter.
	// The destination does not influence the decision.
	BeforeEntry(origin, destination Direction)

	// AfterExit records that a previously admitted vehicle from origin left.
	// It never blocks.
	AfterExit(origin, destination Direction)
}
