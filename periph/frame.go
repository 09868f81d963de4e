// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"errors"
	"fmt"
)

var (
	ErrAddress = errors.New("periph: address must be 7-bit (0-127)")
)

const (
	maxAddr = 0x7f

	flagMask  = 0x8000
	addrShift = 8
)

// Frame is a 16-bit register-write transaction, as transmitted on the wire.
type Frame uint16

// NewFrame assembles a frame from its write flag, 7-bit address and payload.
func NewFrame(write bool, addr, data uint8) (Frame, error) {
	if addr > maxAddr {
		return 0, fmt.Errorf("periph: invalid address 0x%x: %w", addr, ErrAddress)
	}
	f := Frame(addr)<<addrShift | Frame(data)
	if write {
		f |= flagMask
	}
	return f, nil
}

// Write returns whether the valid/write flag of the frame is set.
func (f Frame) Write() bool { return f&flagMask != 0 }

// Addr returns the register address carried by the frame.
func (f Frame) Addr() Addr { return Addr(f>>addrShift) & maxAddr }

// Data returns the payload of the frame.
func (f Frame) Data() uint8 { return uint8(f) }

// Bit returns the i-th bit sent on the wire (0 is sent first).
func (f Frame) Bit(i int) bool {
	return f>>(frameBits-1-i)&1 == 1
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{w=%d, addr=0x%02x, data=0x%02x}", b2u(f.Write()), uint8(f.Addr()), f.Data())
}

// assembler shifts in one bit per clock edge while the peripheral is
// selected, counting the bits received since the last deselection.
type assembler struct {
	count uint8 // bits received, saturates at frameBits
	buf   uint16
}

func (a *assembler) reset() {
	a.count = 0
	a.buf = 0
}

// next is the content of the buffer once copi is shifted in.
func (a *assembler) next(copi bool) Frame {
	return Frame(a.buf<<1 | uint16(b2u(copi)))
}

// complete returns whether the current edge delivers the last bit of a frame.
func (a *assembler) complete(pulse bool) bool {
	return pulse && a.count == frameBits-1
}

func (a *assembler) step(lines Pins, pulse bool) {
	switch {
	case !lines.Selected():
		a.reset()
	case pulse:
		a.buf = uint16(a.next(lines.COPI))
		if a.count < frameBits {
			a.count++
		}
	}
}
