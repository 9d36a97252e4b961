// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads

import (
	"github.com/ava-labs/avalanchego/utils/logging"
)

const DefaultLimit = 10

type Config struct {
	// Maximum number of vehicles from the active direction that may be
	// admitted without waiting. Default is 10.
	Limit int

	// Defaults to a logger that discards everything.
	Logger Logger
}

func DefaultConfig() Config {
	return Config{
		Limit:  DefaultLimit,
		Logger: logging.NoLog{},
	}
}
