// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ava-labs/crossroads"
	"github.com/google/uuid"
)

type Vehicle struct {
	ID          uuid.UUID
	Origin      crossroads.Direction
	Destination crossroads.Direction

	// Delay before the vehicle arrives at the intersection.
	Delay time.Duration
}

func (v Vehicle) String() string {
	return fmt.Sprintf("%s (%s->%s)", v.ID.String()[:8], v.Origin, v.Destination)
}

// generateVehicles draws the traffic for a run. The same seed yields the same
// vehicles, identifiers included.
func generateVehicles(r *rand.Rand, config *Config) ([]Vehicle, error) {
	vehicles := make([]Vehicle, config.Vehicles)
	for i := range vehicles {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed generating vehicle ID: %w", err)
		}

		origin := config.Origins[r.Intn(len(config.Origins))]
		// Any of the three other directions.
		turn := 1 + r.Intn(crossroads.NumDirections-1)
		destination := crossroads.Direction((int(origin) + turn) % crossroads.NumDirections)

		var delay time.Duration
		if config.ArrivalJitter > 0 {
			delay = time.Duration(r.Int63n(int64(config.ArrivalJitter)))
		}

		vehicles[i] = Vehicle{
			ID:          id,
			Origin:      origin,
			Destination: destination,
			Delay:       delay,
		}
	}
	return vehicles, nil
}
