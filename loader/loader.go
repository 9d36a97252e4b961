// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/crossroads"
	"go.uber.org/zap"
)

var (
	ErrNoAddressSpace = errors.New("could not create address space")
	ErrEntryReturned  = errors.New("program entry returned")
)

type Image interface {
	io.Closer

	// Load maps the executable into the address space and returns its entry
	// point.
	Load(as AddressSpace) (uint64, error)
}

type ImageOpener interface {
	Open(name string) (Image, error)
}

type AddressSpace interface {
	// Activate makes this the address space of the running process.
	Activate()

	// DefineStack sets up the user stack and returns its top.
	DefineStack() (uint64, error)

	// CopyOut writes data into the address space at addr.
	CopyOut(addr uint64, data []byte) error
}

// EnterFunc starts executing a loaded program. It only returns if the program
// could not be started.
type EnterFunc func(argc int, argv, stackPointer, entry uint64) error

type Loader struct {
	Opener          ImageOpener
	NewAddressSpace func() (AddressSpace, error)
	Enter           EnterFunc

	// Defaults to DefaultArgLayout().
	Layout ArgLayout

	// Defaults to a logger that discards everything.
	Logger crossroads.Logger
}

// Run loads the named program into a fresh address space, places args on its
// stack and enters it. On success control never comes back, so Run always
// returns an error: either why the program could not be started, or
// ErrEntryReturned.
func (l *Loader) Run(name string, args []string) error {
	logger := l.Logger
	if logger == nil {
		logger = logging.NoLog{}
	}
	layout := l.Layout
	if layout == (ArgLayout{}) {
		layout = DefaultArgLayout()
	}

	image, err := l.Opener.Open(name)
	if err != nil {
		return fmt.Errorf("failed opening %q: %w", name, err)
	}

	as, entry, err := l.load(image)
	if closeErr := image.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed loading %q: %w", name, err)
	}

	top, err := as.DefineStack()
	if err != nil {
		return fmt.Errorf("failed defining stack for %q: %w", name, err)
	}

	stack, err := layout.Build(top, args)
	if err != nil {
		return fmt.Errorf("failed laying out arguments for %q: %w", name, err)
	}
	if err := as.CopyOut(stack.Base, stack.Image); err != nil {
		return fmt.Errorf("failed copying arguments for %q: %w", name, err)
	}

	logger.Debug("Entering program",
		zap.String("name", name),
		zap.Int("argc", stack.Argc),
		zap.Uint64("argv", stack.Argv),
		zap.Uint64("sp", stack.StackPointer),
		zap.Uint64("entry", entry))

	if err := l.Enter(stack.Argc, stack.Argv, stack.StackPointer, entry); err != nil {
		return fmt.Errorf("failed entering %q: %w", name, err)
	}

	logger.Error("Program entry returned", zap.String("name", name))
	return ErrEntryReturned
}

func (l *Loader) load(image Image) (AddressSpace, uint64, error) {
	as, err := l.NewAddressSpace()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrNoAddressSpace, err)
	}
	as.Activate()

	entry, err := image.Load(as)
	if err != nil {
		return nil, 0, err
	}
	return as, entry, nil
}
