// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package periph models, cycle by cycle, the peripheral side of a
// SPI-like register-write link.
//
// A controller drives a data line (COPI), a serial clock (SCLK) and an
// active-low chip-select (nCS). The peripheral samples these lines on
// every tick of its own, faster, sampling clock; reconstructs 16-bit
// frames and commits their 8-bit payload into one of five registers.
//
// A frame is transmitted most-significant bit first:
//
//	bit 15     valid/write flag (must be 1 to commit)
//	bits 14:8  7-bit register address
//	bits  7:0  8-bit payload
//
// Frames with a cleared flag, an unknown address or that are aborted by a
// premature deselection are silently dropped.
package periph // import "github.com/go-lpc/spireg/periph"

import (
	"log"
)

const (
	frameBits = 16 // number of bits in a frame
)

// Commit describes a payload written into a register.
type Commit struct {
	Tick uint64 `json:"tick"` // sampling tick at which the write happened
	Addr Addr   `json:"addr"`
	Data uint8  `json:"data"`
}

// Peripheral is a SPI register peripheral, stepped one sampling tick at a time.
//
// All the state of the peripheral is owned by the value.
// Peripheral is not safe for concurrent use: readers should only inspect
// registers between two calls to Tick.
type Peripheral struct {
	msg *log.Logger
	obs func(Commit)

	rst   bool   // reset line asserted
	ticks uint64 // number of sampling ticks seen

	sync synchronizer
	edge edgeDetector
	asm  assembler
	regs Registers
}

// New creates a new peripheral, in its post-reset state.
func New(opts ...Option) *Peripheral {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Peripheral{
		msg: cfg.msg,
		obs: cfg.obs,
	}
	p.Reset()
	return p
}

// Reset asynchronously resets the peripheral.
// Registers and frame state are cleared immediately, without waiting
// for the next sampling tick.
func (p *Peripheral) Reset() {
	p.sync.reset()
	p.edge.reset()
	p.asm.reset()
	p.regs = Registers{}
}

// SetReset drives the active-low reset line of the peripheral.
// While asserted, the peripheral is held in its reset state and ignores
// its input lines.
func (p *Peripheral) SetReset(asserted bool) {
	p.rst = asserted
	if asserted {
		p.Reset()
	}
}

// InReset returns whether the reset line is currently asserted.
func (p *Peripheral) InReset() bool { return p.rst }

// Tick advances the peripheral by one sampling tick, sampling the provided
// raw line levels.
// Tick returns the register write performed during that tick, if any.
func (p *Peripheral) Tick(raw Pins) (Commit, bool) {
	p.ticks++
	if p.rst {
		p.Reset()
		return Commit{}, false
	}

	// all next-state values are derived from the state as it stood at
	// the start of the tick, then applied together.
	var (
		lines = p.sync.out()
		pulse = p.edge.pulse(lines.SCLK)
		frame = p.asm.next(lines.COPI)
		fire  = p.asm.complete(pulse)
	)

	p.asm.step(lines, pulse)
	p.edge.step(lines.SCLK)
	p.sync.step(raw)

	if !fire {
		return Commit{}, false
	}
	return p.commit(frame)
}

func (p *Peripheral) commit(f Frame) (Commit, bool) {
	if !f.Write() {
		p.debugf("tick=%d: dropping frame %v (flag not set)", p.ticks, f)
		return Commit{}, false
	}

	addr := f.Addr()
	if !p.regs.set(addr, f.Data()) {
		p.debugf("tick=%d: dropping frame %v (unknown address)", p.ticks, f)
		return Commit{}, false
	}

	c := Commit{Tick: p.ticks, Addr: addr, Data: f.Data()}
	p.debugf("tick=%d: %v <- 0x%02x", c.Tick, c.Addr, c.Data)
	if p.obs != nil {
		p.obs(c)
	}
	return c, true
}

// Registers returns a copy of the register file.
func (p *Peripheral) Registers() Registers { return p.regs }

// Register returns the value of the register at the provided address.
func (p *Peripheral) Register(addr Addr) (uint8, bool) {
	return p.regs.Get(addr)
}

// Outputs returns the values exposed on the dedicated output (uo) and
// bidirectional (uio) pins of the tile, ie: the output-enable masks.
func (p *Peripheral) Outputs() (uo, uio uint8) {
	return p.regs.OutEnableLow, p.regs.OutEnableHigh
}

// Ticks returns the number of sampling ticks seen by the peripheral.
func (p *Peripheral) Ticks() uint64 { return p.ticks }

// BitCount returns the number of bits received in the current frame.
func (p *Peripheral) BitCount() int { return int(p.asm.count) }

// Synced returns the line levels as seen by the peripheral logic, after
// synchronization.
func (p *Peripheral) Synced() Pins { return p.sync.out() }

func (p *Peripheral) debugf(format string, args ...interface{}) {
	if p.msg == nil {
		return
	}
	p.msg.Printf(format, args...)
}
