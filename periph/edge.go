// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

// edgeDetector flags low-to-high transitions of the synchronized clock.
type edgeDetector struct {
	prev bool // synchronized clock, one tick ago
}

func (e *edgeDetector) reset() { e.prev = false }

// pulse is true for exactly one tick per rising edge of sclk.
func (e *edgeDetector) pulse(sclk bool) bool {
	return !e.prev && sclk
}

func (e *edgeDetector) step(sclk bool) { e.prev = sclk }
