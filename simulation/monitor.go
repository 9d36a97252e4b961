// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulation

import (
	"sync"

	"github.com/ava-labs/crossroads"
	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

type EventKind uint8

const (
	Entered EventKind = iota
	Exited
)

func (k EventKind) String() string {
	if k == Entered {
		return "entered"
	}
	return "exited"
}

type Event struct {
	Vehicle Vehicle
	Kind    EventKind
	// Occupancy per direction right after the event.
	Inside [crossroads.NumDirections]int
}

// Violation is recorded when a vehicle enters while vehicles from another
// direction are still inside.
type Violation struct {
	Vehicle Vehicle
	Inside  [crossroads.NumDirections]int
}

// Monitor watches the intersection from the vehicles' side, independently of
// the arbiter. Vehicles report to it after being admitted and before leaving.
type Monitor struct {
	lock   sync.Mutex
	logger crossroads.Logger

	inside     [crossroads.NumDirections]int
	peak       [crossroads.NumDirections]int
	violations []Violation

	trace     *deque.Deque[Event]
	traceSize int
}

func NewMonitor(logger crossroads.Logger, traceSize int) *Monitor {
	return &Monitor{
		logger:    logger,
		trace:     deque.New[Event](),
		traceSize: traceSize,
	}
}

func (m *Monitor) Enter(v Vehicle) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for d, n := range m.inside {
		if n > 0 && crossroads.Direction(d) != v.Origin {
			m.violations = append(m.violations, Violation{Vehicle: v, Inside: m.inside})
			m.logger.Warn("Vehicles from different directions inside the intersection",
				zap.Stringer("vehicle", v),
				zap.Ints("inside", m.inside[:]))
			break
		}
	}

	m.inside[v.Origin]++
	m.peak[v.Origin] = max(m.peak[v.Origin], m.inside[v.Origin])
	m.record(v, Entered)
}

func (m *Monitor) Exit(v Vehicle) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.inside[v.Origin] == 0 {
		panic("vehicle left the intersection without entering it")
	}
	m.inside[v.Origin]--
	m.record(v, Exited)
}

func (m *Monitor) record(v Vehicle, kind EventKind) {
	if m.traceSize == 0 {
		return
	}
	if m.trace.Len() == m.traceSize {
		m.trace.PopFront()
	}
	m.trace.PushBack(Event{Vehicle: v, Kind: kind, Inside: m.inside})
	m.logger.Verbo("Monitor event", zap.Stringer("vehicle", v), zap.Stringer("kind", kind))
}

func (m *Monitor) Violations() []Violation {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]Violation(nil), m.violations...)
}

// Peak returns the highest number of vehicles seen inside at once, per direction.
func (m *Monitor) Peak() [crossroads.NumDirections]int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.peak
}

// Trace returns the most recent events, oldest first.
func (m *Monitor) Trace() []Event {
	m.lock.Lock()
	defer m.lock.Unlock()

	events := make([]Event, m.trace.Len())
	for i := range events {
		events[i] = m.trace.At(i)
	}
	return events
}
