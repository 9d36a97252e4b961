// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// crossroads sends simulated traffic through the intersection arbiter and
// prints what happened.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ava-labs/crossroads"
	"github.com/ava-labs/crossroads/simulation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	config := simulation.DefaultConfig()
	limit := crossroads.DefaultLimit
	origins := "n,e,s,w"
	logLevel := "info"

	fs := flag.NewFlagSet("crossroads", flag.ContinueOnError)
	fs.IntVar(&config.Vehicles, "vehicles", config.Vehicles, "number of vehicles")
	fs.IntVar(&config.MaxInFlight, "in-flight", config.MaxInFlight, "maximum vehicles approaching or inside at once")
	fs.StringVar(&origins, "origins", origins, "comma separated directions vehicles arrive from")
	fs.IntVar(&limit, "limit", limit, "vehicles of the active direction admitted without waiting")
	fs.DurationVar(&config.CrossTime, "cross-time", config.CrossTime, "time a vehicle spends inside")
	fs.DurationVar(&config.ArrivalJitter, "jitter", config.ArrivalJitter, "maximum random delay before a vehicle arrives")
	fs.DurationVar(&config.StallTimeout, "stall-timeout", config.StallTimeout, "give up when nothing moves for this long")
	fs.Int64Var(&config.RandomSeed, "seed", config.RandomSeed, "random seed")
	fs.StringVar(&logLevel, "log-level", logLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	config.Origins, err = parseOrigins(origins)
	if err != nil {
		return err
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	config.Logger = logger

	in, err := crossroads.NewIntersection(crossroads.Config{Limit: limit, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := simulation.Run(ctx, in, config)
	if report != nil {
		printReport(report)
	}
	switch {
	case errors.Is(err, simulation.ErrStalled):
		return fmt.Errorf("%w (seed %d)", err, config.RandomSeed)
	case err != nil:
		return err
	}

	in.Close()
	return nil
}

func parseOrigins(s string) ([]crossroads.Direction, error) {
	var origins []crossroads.Direction
	for _, name := range strings.Split(s, ",") {
		d, err := crossroads.ParseDirection(name)
		if err != nil {
			return nil, err
		}
		origins = append(origins, d)
	}
	return origins, nil
}

func newLogger(level string) (*crossroads.ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return crossroads.NewZapLogger(logger), nil
}

func printReport(r *simulation.Report) {
	fmt.Printf("vehicles  %d (admitted %d, exited %d) in %s\n", r.Vehicles, r.Admitted, r.Exited, r.Elapsed)
	for _, d := range crossroads.Directions() {
		fmt.Printf("%-6s    arrivals %-5d peak inside %d\n", d, r.PerOrigin[d], r.PeakOccupancy[d])
	}
	fmt.Printf("violations %d\n", len(r.Violations))
	for _, v := range r.Violations {
		fmt.Printf("  %s entered with %v inside\n", v.Vehicle, v.Inside)
	}
}
