// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import "fmt"

// bit positions of the lines in the packed ui_in byte.
const (
	bitSCLK = 0
	bitCOPI = 1
	bitNCS  = 2
)

// Pins holds the levels of the three input lines of the peripheral.
type Pins struct {
	COPI bool // serial data, controller out/peripheral in
	NCS  bool // chip select, active low
	SCLK bool // serial clock
}

// Idle is the line state of a deselected bus.
var Idle = Pins{NCS: true}

// PinsFrom unpacks the line levels from a ui_in byte.
func PinsFrom(ui uint8) Pins {
	return Pins{
		SCLK: ui>>bitSCLK&1 == 1,
		COPI: ui>>bitCOPI&1 == 1,
		NCS:  ui>>bitNCS&1 == 1,
	}
}

// Byte packs the line levels into a ui_in byte.
func (p Pins) Byte() uint8 {
	return b2u(p.SCLK)<<bitSCLK | b2u(p.COPI)<<bitCOPI | b2u(p.NCS)<<bitNCS
}

// Selected returns whether chip select is asserted.
func (p Pins) Selected() bool { return !p.NCS }

func (p Pins) String() string {
	return fmt.Sprintf("ncs=%d copi=%d sclk=%d", b2u(p.NCS), b2u(p.COPI), b2u(p.SCLK))
}

func b2u(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
