// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"log"
)

type config struct {
	msg *log.Logger
	obs func(Commit)
}

func newConfig() config {
	return config{}
}

// Option configures a Peripheral.
type Option func(*config)

// WithLogger traces committed and dropped frames to msg.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithObserver registers a function invoked on every register commit.
func WithObserver(f func(Commit)) Option {
	return func(cfg *config) {
		cfg.obs = f
	}
}
