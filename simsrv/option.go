// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simsrv

import (
	"log"

	"github.com/go-lpc/spireg/ctrl"
)

type config struct {
	msg     *log.Logger
	verbose bool
	drv     []ctrl.Option
}

func newConfig() config {
	return config{}
}

// Option configures the control server.
type Option func(*config)

// WithLogger sets the logger of the server.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithVerbose enables tracing of every register commit.
func WithVerbose(v bool) Option {
	return func(cfg *config) {
		cfg.verbose = v
	}
}

// WithController configures the SPI controller driving the peripheral.
func WithController(opts ...ctrl.Option) Option {
	return func(cfg *config) {
		cfg.drv = append(cfg.drv, opts...)
	}
}
