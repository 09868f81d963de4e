// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctrl drives the lines of a SPI register peripheral, bit-banging
// register-write transactions the way a controller would.
package ctrl // import "github.com/go-lpc/spireg/ctrl"

import (
	"errors"
	"fmt"

	"github.com/go-lpc/spireg/periph"
)

var (
	ErrHalfPeriod = errors.New("ctrl: SCLK half-period must span at least one sampling tick")
	ErrIdle       = errors.New("ctrl: idle time must span at least two sampling ticks")
	ErrBits       = errors.New("ctrl: invalid number of bits")
)

const (
	frameBits = 16
	maxBits   = 64
)

// Sink consumes line levels, one sampling tick at a time.
type Sink interface {
	Tick(pins periph.Pins)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(pins periph.Pins)

func (f SinkFunc) Tick(pins periph.Pins) { f(pins) }

// Target returns a sink feeding the provided peripheral.
func Target(p *periph.Peripheral) Sink {
	return SinkFunc(func(pins periph.Pins) {
		p.Tick(pins)
	})
}

// Tee returns a sink duplicating line levels to all the provided sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(pins periph.Pins) {
		for _, s := range sinks {
			s.Tick(pins)
		}
	})
}

// Driver is a bit-banging SPI controller.
type Driver struct {
	sink  Sink
	half  int // SCLK half-period, in sampling ticks
	idle  int // deselected ticks after each transaction
	ticks uint64
}

// New creates a new driver feeding sink.
func New(sink Sink, opts ...Option) (*Driver, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.half < 1 {
		return nil, fmt.Errorf("ctrl: invalid half-period %d: %w", cfg.half, ErrHalfPeriod)
	}
	if cfg.idle < 2 {
		return nil, fmt.Errorf("ctrl: invalid idle time %d: %w", cfg.idle, ErrIdle)
	}

	return &Driver{
		sink: sink,
		half: cfg.half,
		idle: cfg.idle,
	}, nil
}

// Ticks returns the number of sampling ticks driven so far.
func (drv *Driver) Ticks() uint64 { return drv.ticks }

// Write sends a register-write transaction.
func (drv *Driver) Write(addr, data uint8) error {
	return drv.Transfer(true, addr, data)
}

// Transfer sends a transaction with the provided flag, address and payload.
// Frames with a cleared flag are read requests, which the peripheral
// ignores.
func (drv *Driver) Transfer(write bool, addr, data uint8) error {
	f, err := periph.NewFrame(write, addr, data)
	if err != nil {
		return fmt.Errorf("ctrl: could not create frame: %w", err)
	}
	drv.Send(f)
	return nil
}

// Send sends a complete 16-bit frame.
func (drv *Driver) Send(f periph.Frame) {
	_ = drv.SendBits(uint64(f), frameBits) // can not fail.
}

// Abort starts sending f, but deselects the peripheral after n bits.
func (drv *Driver) Abort(f periph.Frame, n int) error {
	if n < 0 || n >= frameBits {
		return fmt.Errorf("ctrl: could not abort after %d bits: %w", n, ErrBits)
	}
	return drv.SendBits(uint64(f)>>(frameBits-n), n)
}

// SendBits sends the n least-significant bits of bits, most-significant
// bit first, within a single selection of the peripheral.
func (drv *Driver) SendBits(bits uint64, n int) error {
	if n < 0 || n > maxBits {
		return fmt.Errorf("ctrl: could not send %d bits: %w", n, ErrBits)
	}

	drv.emit(periph.Pins{}, 1)
	for i := n - 1; i >= 0; i-- {
		copi := bits>>i&1 == 1
		drv.emit(periph.Pins{COPI: copi}, drv.half)
		drv.emit(periph.Pins{COPI: copi, SCLK: true}, drv.half)
	}
	drv.emit(periph.Idle, drv.idle)
	return nil
}

// Wait keeps the bus idle for n sampling ticks.
func (drv *Driver) Wait(n int) {
	drv.emit(periph.Idle, n)
}

func (drv *Driver) emit(pins periph.Pins, n int) {
	for i := 0; i < n; i++ {
		drv.sink.Tick(pins)
	}
	drv.ticks += uint64(n)
}
