// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrl

type config struct {
	half int
	idle int
}

func newConfig() config {
	return config{
		half: 50,  // 5us at a 100ns sampling clock
		idle: 600, // from the reference test bench
	}
}

// Option configures a Driver.
type Option func(*config)

// WithHalfPeriod sets the SCLK half-period, in sampling ticks.
func WithHalfPeriod(n int) Option {
	return func(cfg *config) {
		cfg.half = n
	}
}

// WithIdle sets the number of deselected sampling ticks following each
// transaction.
func WithIdle(n int) Option {
	return func(cfg *config) {
		cfg.idle = n
	}
}
