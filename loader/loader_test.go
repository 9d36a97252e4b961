// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package loader_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ava-labs/crossroads/loader"
	"github.com/ava-labs/crossroads/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testStackTop = 0x8000
	testEntry    = 0x400120
)

var errTest = errors.New("test failure")

type testAddressSpace struct {
	activated bool
	memory    map[uint64]byte
	stackErr  error
	copyErr   error
}

func (as *testAddressSpace) Activate() {
	as.activated = true
}

func (as *testAddressSpace) DefineStack() (uint64, error) {
	return testStackTop, as.stackErr
}

func (as *testAddressSpace) CopyOut(addr uint64, data []byte) error {
	if as.copyErr != nil {
		return as.copyErr
	}
	for i, b := range data {
		as.memory[addr+uint64(i)] = b
	}
	return nil
}

func (as *testAddressSpace) readPointer(addr uint64) uint64 {
	var b [8]byte
	for i := range b {
		b[i] = as.memory[addr+uint64(i)]
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (as *testAddressSpace) readString(addr uint64) string {
	var s []byte
	for as.memory[addr] != 0 {
		s = append(s, as.memory[addr])
		addr++
	}
	return string(s)
}

type testImage struct {
	loadErr  error
	closeErr error
	closed   bool
	loadedIn loader.AddressSpace
}

func (img *testImage) Load(as loader.AddressSpace) (uint64, error) {
	img.loadedIn = as
	return testEntry, img.loadErr
}

func (img *testImage) Close() error {
	img.closed = true
	return img.closeErr
}

type testOpener map[string]*testImage

func (o testOpener) Open(name string) (loader.Image, error) {
	img, ok := o[name]
	if !ok {
		return nil, errTest
	}
	return img, nil
}

type entered struct {
	argc       int
	argv, sp   uint64
	entry      uint64
	invocation int
}

func newTestLoader(t *testing.T, img *testImage, as *testAddressSpace, got *entered) *loader.Loader {
	return &loader.Loader{
		Opener: testOpener{"/bin/cat": img},
		NewAddressSpace: func() (loader.AddressSpace, error) {
			return as, nil
		},
		Enter: func(argc int, argv, sp, entry uint64) error {
			got.argc, got.argv, got.sp, got.entry = argc, argv, sp, entry
			got.invocation++
			return nil
		},
		Logger: testutil.MakeLogger(t),
	}
}

func TestRunEntersProgram(t *testing.T) {
	img := &testImage{}
	as := &testAddressSpace{memory: make(map[uint64]byte)}
	var got entered

	l := newTestLoader(t, img, as, &got)
	args := []string{"cat", "file.txt"}

	err := l.Run("/bin/cat", args)
	require.ErrorIs(t, err, loader.ErrEntryReturned)

	require.True(t, as.activated)
	require.True(t, img.closed)
	require.Same(t, as, img.loadedIn)

	require.Equal(t, 1, got.invocation)
	require.Equal(t, 2, got.argc)
	require.Equal(t, uint64(testEntry), got.entry)
	require.Zero(t, got.sp%8)
	require.LessOrEqual(t, got.sp, got.argv)

	for i, arg := range args {
		ptr := as.readPointer(got.argv + uint64(8*i))
		require.Zero(t, ptr%8)
		require.Less(t, ptr, uint64(testStackTop))
		require.Equal(t, arg, as.readString(ptr))
	}
	require.Zero(t, as.readPointer(got.argv+16))
}

func TestRunFailures(t *testing.T) {
	t.Run("unknown program", func(t *testing.T) {
		var got entered
		l := newTestLoader(t, &testImage{}, &testAddressSpace{memory: map[uint64]byte{}}, &got)
		require.ErrorIs(t, l.Run("/bin/nope", nil), errTest)
		require.Zero(t, got.invocation)
	})

	t.Run("no address space", func(t *testing.T) {
		img := &testImage{}
		var got entered
		l := newTestLoader(t, img, nil, &got)
		l.NewAddressSpace = func() (loader.AddressSpace, error) {
			return nil, errTest
		}

		err := l.Run("/bin/cat", nil)
		require.ErrorIs(t, err, loader.ErrNoAddressSpace)
		require.ErrorIs(t, err, errTest)
		require.True(t, img.closed)
		require.Zero(t, got.invocation)
	})

	t.Run("load fails", func(t *testing.T) {
		img := &testImage{loadErr: errTest}
		var got entered
		l := newTestLoader(t, img, &testAddressSpace{memory: map[uint64]byte{}}, &got)

		require.ErrorIs(t, l.Run("/bin/cat", nil), errTest)
		require.True(t, img.closed)
		require.Zero(t, got.invocation)
	})

	t.Run("close fails", func(t *testing.T) {
		img := &testImage{closeErr: errTest}
		var got entered
		l := newTestLoader(t, img, &testAddressSpace{memory: map[uint64]byte{}}, &got)

		require.ErrorIs(t, l.Run("/bin/cat", nil), errTest)
		require.Zero(t, got.invocation)
	})

	t.Run("stack fails", func(t *testing.T) {
		var got entered
		as := &testAddressSpace{memory: map[uint64]byte{}, stackErr: errTest}
		l := newTestLoader(t, &testImage{}, as, &got)

		require.ErrorIs(t, l.Run("/bin/cat", nil), errTest)
		require.Zero(t, got.invocation)
	})

	t.Run("copy out fails", func(t *testing.T) {
		var got entered
		as := &testAddressSpace{memory: map[uint64]byte{}, copyErr: errTest}
		l := newTestLoader(t, &testImage{}, as, &got)

		require.ErrorIs(t, l.Run("/bin/cat", []string{"cat"}), errTest)
		require.Zero(t, got.invocation)
	})

	t.Run("invalid layout", func(t *testing.T) {
		var got entered
		l := newTestLoader(t, &testImage{}, &testAddressSpace{memory: map[uint64]byte{}}, &got)
		l.Layout = loader.ArgLayout{Alignment: 3, PointerSize: 8, ByteOrder: binary.LittleEndian}

		require.ErrorIs(t, l.Run("/bin/cat", nil), loader.ErrInvalidLayout)
		require.Zero(t, got.invocation)
	})

	t.Run("enter fails", func(t *testing.T) {
		var got entered
		l := newTestLoader(t, &testImage{}, &testAddressSpace{memory: map[uint64]byte{}}, &got)
		l.Enter = func(int, uint64, uint64, uint64) error {
			return errTest
		}

		err := l.Run("/bin/cat", nil)
		require.ErrorIs(t, err, errTest)
		require.NotErrorIs(t, err, loader.ErrEntryReturned)
	})
}
