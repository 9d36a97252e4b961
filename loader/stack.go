// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidLayout = errors.New("invalid argument layout")
	ErrStackOverflow = errors.New("arguments do not fit below the stack top")
)

// ArgLayout describes how program arguments are laid out on a new stack.
type ArgLayout struct {
	// Every argument string and the final stack pointer are aligned to this
	// many bytes. Must be a power of two.
	Alignment uint64
	// Size of an entry in the argument vector, 4 or 8.
	PointerSize int
	ByteOrder   binary.ByteOrder
}

func DefaultArgLayout() ArgLayout {
	return ArgLayout{
		Alignment:   8,
		PointerSize: 8,
		ByteOrder:   binary.LittleEndian,
	}
}

// ArgStack is the top of a stack holding program arguments.
type ArgStack struct {
	// Image holds the bytes of [Base, Top).
	Base  uint64
	Top   uint64
	Image []byte

	Argc int
	// Argv is the address of the NULL terminated argument vector, which is
	// also the lowest address written.
	Argv         uint64
	StackPointer uint64
}

// Build lays args out below top. Strings go first, the last argument highest,
// each NUL terminated and padded to the alignment. The argument vector sits
// right below the strings.
func (l ArgLayout) Build(top uint64, args []string) (*ArgStack, error) {
	if err := l.validate(top); err != nil {
		return nil, err
	}

	ptrSize := uint64(l.PointerSize)
	padded := make([]uint64, len(args))
	total := uint64(len(args)+1) * ptrSize
	for i, arg := range args {
		padded[i] = alignUp(uint64(len(arg))+1, l.Alignment)
		total += padded[i]
	}
	if total > top {
		return nil, fmt.Errorf("%w: need %d bytes below %#x", ErrStackOverflow, total, top)
	}

	argv := top - total
	image := make([]byte, total)

	addr := top
	for i := len(args) - 1; i >= 0; i-- {
		addr -= padded[i]
		copy(image[addr-argv:], args[i])
		l.putPointer(image[uint64(i)*ptrSize:], addr)
	}
	// The vector's terminating entry is already zero.

	return &ArgStack{
		Base:         argv,
		Top:          top,
		Image:        image,
		Argc:         len(args),
		Argv:         argv,
		StackPointer: argv &^ (l.Alignment - 1),
	}, nil
}

func (l ArgLayout) validate(top uint64) error {
	switch {
	case l.Alignment == 0 || l.Alignment&(l.Alignment-1) != 0:
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidLayout, l.Alignment)
	case l.PointerSize != 4 && l.PointerSize != 8:
		return fmt.Errorf("%w: pointer size %d", ErrInvalidLayout, l.PointerSize)
	case l.ByteOrder == nil:
		return fmt.Errorf("%w: no byte order", ErrInvalidLayout)
	case top&(l.Alignment-1) != 0:
		return fmt.Errorf("%w: stack top %#x is not %d byte aligned", ErrInvalidLayout, top, l.Alignment)
	case l.PointerSize == 4 && top > math.MaxUint32:
		return fmt.Errorf("%w: stack top %#x does not fit a 4 byte pointer", ErrInvalidLayout, top)
	}
	return nil
}

func (l ArgLayout) putPointer(b []byte, addr uint64) {
	if l.PointerSize == 4 {
		l.ByteOrder.PutUint32(b, uint32(addr))
		return
	}
	l.ByteOrder.PutUint64(b, addr)
}

func alignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}
