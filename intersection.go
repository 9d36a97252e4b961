// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidLimit = errors.New("intersection limit must be positive")

	_ Arbiter = (*Intersection)(nil)
)

// Intersection lets vehicles from a single direction through at a time.
//
// Up to limit vehicles of the active direction are admitted directly. Everyone
// else waits on the wait queue of their origin. When the last vehicle leaves,
// the direction with the most waiting vehicles is chosen and its whole queue is
// woken at once.
//
// All fields below lock are guarded by it.
type Intersection struct {
	lock   sync.Mutex
	logger Logger
	limit  int

	inside     int
	insideFrom [NumDirections]int
	active     ActiveDirection

	queued       [NumDirections]int
	firstArrival [NumDirections]uint64 // 0 means no arrival since the direction was last chosen
	arrived      uint64
	waitQueues   [NumDirections]*sync.Cond

	initialized bool
	closed      bool
}

func NewIntersection(config Config) (*Intersection, error) {
	if config.Limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, config.Limit)
	}
	if config.Logger == nil {
		config.Logger = logging.NoLog{}
	}

	in := &Intersection{
		logger:      config.Logger,
		limit:       config.Limit,
		active:      NoDirection,
		initialized: true,
	}
	for d := range in.waitQueues {
		in.waitQueues[d] = sync.NewCond(&in.lock)
	}

	in.logger.Info("Created intersection", zap.Int("limit", in.limit))
	return in, nil
}

// Close tears the intersection down. No vehicle may be inside or waiting.
func (in *Intersection) Close() {
	in.lock.Lock()
	defer in.lock.Unlock()

	in.mustBeOpen("Close")

	waiting := in.totalQueued()
	if in.inside > 0 || waiting > 0 {
		in.logger.Error("Closing an intersection that is still in use",
			zap.Int("inside", in.inside), zap.Int("waiting", waiting))
		panic(fmt.Sprintf("intersection closed with %d vehicles inside and %d waiting", in.inside, waiting))
	}

	in.closed = true
	in.logger.Info("Closed intersection", zap.Uint64("arrivals", in.arrived))
}

func (in *Intersection) BeforeEntry(origin, destination Direction) {
	mustBeValid(origin)
	mustBeValid(destination)

	in.lock.Lock()
	defer in.lock.Unlock()

	in.mustBeOpen("BeforeEntry")

	in.arrived++
	if in.firstArrival[origin] == 0 {
		in.firstArrival[origin] = in.arrived
	}
	in.logger.Verbo("Vehicle arrived",
		zap.Stringer("origin", origin),
		zap.Stringer("destination", destination),
		zap.Uint64("arrival", in.arrived))

	if in.active.IsNone() {
		in.active = Active(origin)
		in.logger.Debug("Idle intersection claimed", zap.Stringer("direction", origin))
	}

	if !in.isSafe(origin) {
		in.queued[origin]++
		in.logger.Debug("Vehicle waiting",
			zap.Stringer("origin", origin),
			zap.Stringer("active", in.active),
			zap.Int("queued", in.queued[origin]))

		// There is no re-check once woken: a vehicle whose direction was chosen
		// goes in unconditionally, even if that takes the occupancy past limit.
		in.waitQueues[origin].Wait()
		in.queued[origin]--
	}

	in.insideFrom[origin]++
	in.inside++
	in.logger.Debug("Vehicle admitted", zap.Stringer("origin", origin), zap.Int("inside", in.inside))
}

func (in *Intersection) AfterExit(origin, destination Direction) {
	mustBeValid(origin)
	mustBeValid(destination)

	in.lock.Lock()
	defer in.lock.Unlock()

	in.mustBeOpen("AfterExit")

	if in.insideFrom[origin] == 0 {
		panic(fmt.Sprintf("vehicle from %s left without being admitted", origin))
	}

	in.inside--
	in.insideFrom[origin]--
	in.logger.Verbo("Vehicle left",
		zap.Stringer("origin", origin),
		zap.Stringer("destination", destination),
		zap.Int("inside", in.inside))

	if in.inside == 0 {
		in.selectNext()
	}
}

// isSafe reports whether a vehicle from origin may enter right now.
func (in *Intersection) isSafe(origin Direction) bool {
	if !in.active.Is(origin) {
		return false
	}
	return in.inside < in.limit
}

// selectNext picks the direction that gets the drained intersection.
//
// The longest queue wins, ties going to the lowest index. A direction whose
// first arrival mark is below the current bound then overrides that choice,
// where the bound starts out as the winning queue length. This compares an
// arrival sequence number with a queue length and can hand the intersection to
// a direction nobody is waiting on.
func (in *Intersection) selectNext() {
	next := North
	longest := 0
	for d := Direction(0); d < NumDirections; d++ {
		if in.queued[d] > longest {
			next = d
			longest = in.queued[d]
		}
	}

	bound := uint64(longest)
	for d := Direction(0); d < NumDirections; d++ {
		if in.firstArrival[d] != 0 && in.firstArrival[d] < bound {
			next = d
			bound = in.firstArrival[d]
		}
	}

	in.firstArrival[next] = 0

	if in.totalQueued() == 0 {
		in.active = NoDirection
		in.logger.Debug("Intersection drained with nobody waiting")
		return
	}

	in.active = Active(next)
	in.logger.Debug("Intersection drained, handing over",
		zap.Stringer("next", next),
		zap.Int("waking", in.queued[next]),
		zap.Ints("queued", in.queued[:]))
	in.waitQueues[next].Broadcast()
}

func (in *Intersection) totalQueued() int {
	var total int
	for _, n := range in.queued {
		total += n
	}
	return total
}

func (in *Intersection) mustBeOpen(op string) {
	if !in.initialized {
		panic(op + " called on an intersection that was never created")
	}
	if in.closed {
		in.logger.Error("Intersection used after Close", zap.String("op", op))
		panic(op + " called on a closed intersection")
	}
}

func mustBeValid(d Direction) {
	if !d.Valid() {
		panic(fmt.Sprintf("invalid direction %d", uint8(d)))
	}
}
