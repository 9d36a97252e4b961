// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads

import (
	"errors"
	"fmt"
	"strings"
)

const NumDirections = 4

var ErrUnknownDirection = errors.New("unknown direction")

// Direction is one of the four origins a vehicle can arrive from.
// It doubles as the index into every per-direction table.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

func Directions() []Direction {
	return []Direction{North, East, South, West}
}

func (d Direction) Valid() bool {
	return d < NumDirections
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection accepts a direction name or its first letter, in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// ActiveDirection is either a Direction or none.
// The zero value is NoDirection.
type ActiveDirection struct {
	dir Direction
	set bool
}

var NoDirection = ActiveDirection{}

func Active(d Direction) ActiveDirection {
	return ActiveDirection{dir: d, set: true}
}

func (a ActiveDirection) Get() (Direction, bool) {
	return a.dir, a.set
}

func (a ActiveDirection) Is(d Direction) bool {
	return a.set && a.dir == d
}

func (a ActiveDirection) IsNone() bool {
	return !a.set
}

func (a ActiveDirection) String() string {
	if !a.set {
		return "none"
	}
	return a.dir.String()
}
