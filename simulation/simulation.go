// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/crossroads"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var ErrStalled = errors.New("traffic stalled")

type Report struct {
	Vehicles      int
	Admitted      int64
	Exited        int64
	PerOrigin     [crossroads.NumDirections]int
	PeakOccupancy [crossroads.NumDirections]int
	Violations    []Violation
	Trace         []Event
	Elapsed       time.Duration
}

func (r *Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("vehicles", r.Vehicles),
		zap.Int64("admitted", r.Admitted),
		zap.Int64("exited", r.Exited),
		zap.Ints("perOrigin", r.PerOrigin[:]),
		zap.Ints("peakOccupancy", r.PeakOccupancy[:]),
		zap.Int("violations", len(r.Violations)),
		zap.Duration("elapsed", r.Elapsed),
	}
}

type simulation struct {
	arbiter crossroads.Arbiter
	config  *Config
	logger  crossroads.Logger
	monitor *Monitor

	launched atomic.Int64
	admitted atomic.Int64
	exited   atomic.Int64
}

// Run sends randomly generated traffic through the arbiter and reports what
// the monitor observed.
//
// Vehicles cannot abandon a wait, so when the run stalls or ctx is cancelled
// the vehicles blocked in the arbiter stay blocked after Run returns.
func Run(ctx context.Context, arbiter crossroads.Arbiter, config *Config) (*Report, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NoLog{}
	}

	vehicles, err := generateVehicles(rand.New(rand.NewSource(config.RandomSeed)), config)
	if err != nil {
		return nil, err
	}

	s := &simulation{
		arbiter: arbiter,
		config:  config,
		logger:  logger,
		monitor: NewMonitor(logger, config.TraceSize),
	}

	logger.Info("Starting simulation",
		zap.Int("vehicles", len(vehicles)),
		zap.Int("maxInFlight", config.MaxInFlight),
		zap.Int64("seed", config.RandomSeed))

	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.launch(runCtx, vehicles)
	}()

	ticker := time.NewTicker(config.StallTimeout)
	defer ticker.Stop()

	lastProgress := s.progress()
	for {
		select {
		case err := <-done:
			report := s.report(vehicles, time.Since(start))
			if err != nil {
				logger.Warn("Simulation interrupted", zap.Error(err))
				return report, err
			}
			logger.Info("Simulation finished", report.Fields()...)
			return report, nil
		case <-ticker.C:
			progress := s.progress()
			outstanding := s.launched.Load() - s.exited.Load()
			if progress == lastProgress && outstanding > 0 {
				cancel()
				report := s.report(vehicles, time.Since(start))
				logger.Warn("Simulation stalled",
					append(report.Fields(), zap.Int64("outstanding", outstanding))...)
				return report, fmt.Errorf("%w: %d vehicles outstanding and none moved for %s",
					ErrStalled, outstanding, config.StallTimeout)
			}
			lastProgress = progress
		}
	}
}

// launch starts a goroutine per vehicle, never more than MaxInFlight at once,
// and waits for all of them.
func (s *simulation) launch(ctx context.Context, vehicles []Vehicle) error {
	g, gctx := errgroup.WithContext(ctx)
	inFlight := semaphore.NewWeighted(int64(s.config.MaxInFlight))

	var err error
	for _, v := range vehicles {
		if err = gctx.Err(); err != nil {
			break
		}
		if err = inFlight.Acquire(gctx, 1); err != nil {
			break
		}

		s.launched.Inc()
		v := v
		g.Go(func() error {
			defer inFlight.Release(1)
			s.drive(v)
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}
	return err
}

func (s *simulation) drive(v Vehicle) {
	if v.Delay > 0 {
		time.Sleep(v.Delay)
	}

	s.arbiter.BeforeEntry(v.Origin, v.Destination)
	s.admitted.Inc()
	s.monitor.Enter(v)
	s.logger.Trace("Vehicle crossing", zap.Stringer("vehicle", v))

	time.Sleep(s.config.CrossTime)

	s.monitor.Exit(v)
	s.arbiter.AfterExit(v.Origin, v.Destination)
	s.exited.Inc()
}

func (s *simulation) progress() int64 {
	return s.admitted.Load() + s.exited.Load()
}

func (s *simulation) report(vehicles []Vehicle, elapsed time.Duration) *Report {
	report := &Report{
		Vehicles:      len(vehicles),
		Admitted:      s.admitted.Load(),
		Exited:        s.exited.Load(),
		PeakOccupancy: s.monitor.Peak(),
		Violations:    s.monitor.Violations(),
		Trace:         s.monitor.Trace(),
		Elapsed:       elapsed,
	}
	for _, v := range vehicles {
		report.PerOrigin[v.Origin]++
	}
	return report
}
