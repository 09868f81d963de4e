// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

// synchronizer brings the asynchronous input lines into the sampling
// clock domain, through two register stages per line.
// Logic only ever looks at the second stage.
type synchronizer struct {
	stage1 Pins
	stage2 Pins
}

func (s *synchronizer) reset() {
	s.stage1 = Idle
	s.stage2 = Idle
}

func (s *synchronizer) out() Pins { return s.stage2 }

func (s *synchronizer) step(raw Pins) {
	s.stage2 = s.stage1
	s.stage1 = raw
}
