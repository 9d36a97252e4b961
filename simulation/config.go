// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/crossroads"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

type Config struct {
	// Number of vehicles sent through the intersection. Default is 200.
	Vehicles int

	// Maximum number of vehicles that are approaching, waiting or inside at
	// the same time. Default is 32.
	MaxInFlight int

	// Directions vehicles arrive from, picked uniformly. Default is all four.
	Origins []crossroads.Direction

	// Time a vehicle spends inside the intersection. Default is 1ms.
	CrossTime time.Duration

	// Upper bound of the random delay before a vehicle arrives. Default is 1ms.
	ArrivalJitter time.Duration

	// The run fails with ErrStalled if no vehicle enters or leaves for this
	// long while some are still outstanding. Default is 2s.
	StallTimeout time.Duration

	RandomSeed int64

	// Number of most recent monitor events kept in the report. Default is 64.
	TraceSize int

	// Defaults to a logger that discards everything.
	Logger crossroads.Logger
}

func DefaultConfig() *Config {
	return &Config{
		Vehicles:      200,
		MaxInFlight:   32,
		Origins:       crossroads.Directions(),
		CrossTime:     time.Millisecond,
		ArrivalJitter: time.Millisecond,
		StallTimeout:  2 * time.Second,
		RandomSeed:    time.Now().UnixMilli(),
		TraceSize:     64,
		Logger:        logging.NoLog{},
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Vehicles < 0:
		return fmt.Errorf("%w: negative vehicle count %d", ErrInvalidConfig, c.Vehicles)
	case c.MaxInFlight <= 0:
		return fmt.Errorf("%w: max in flight must be positive, got %d", ErrInvalidConfig, c.MaxInFlight)
	case len(c.Origins) == 0:
		return fmt.Errorf("%w: no origins", ErrInvalidConfig)
	case c.CrossTime < 0 || c.ArrivalJitter < 0:
		return fmt.Errorf("%w: negative cross time or arrival jitter", ErrInvalidConfig)
	case c.StallTimeout <= c.CrossTime+c.ArrivalJitter:
		return fmt.Errorf("%w: stall timeout %s must exceed cross time plus arrival jitter (%s)",
			ErrInvalidConfig, c.StallTimeout, c.CrossTime+c.ArrivalJitter)
	case c.TraceSize < 0:
		return fmt.Errorf("%w: negative trace size %d", ErrInvalidConfig, c.TraceSize)
	}

	for _, origin := range c.Origins {
		if !origin.Valid() {
			return fmt.Errorf("%w: origin %s", ErrInvalidConfig, origin)
		}
	}
	return nil
}
