// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spi-srv serves a simulated SPI register peripheral over a JSON/TCP
// control connection.
package main // import "github.com/go-lpc/spireg/cmd/spi-srv"

import (
	"flag"
	"log"
	"os"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/simsrv"
)

func main() {
	log.SetPrefix("spi-srv: ")
	log.SetFlags(0)

	var (
		addr    = flag.String("addr", ":8877", "[ip]:port to listen on")
		half    = flag.Int("half", 50, "SCLK half-period, in sampling ticks")
		idle    = flag.Int("idle", 600, "idle sampling ticks after each transaction")
		verbose = flag.Bool("v", false, "enable verbose mode")
	)

	flag.Parse()

	err := simsrv.Serve(
		*addr,
		simsrv.WithLogger(log.New(os.Stdout, "spi-srv: ", 0)),
		simsrv.WithVerbose(*verbose),
		simsrv.WithController(
			ctrl.WithHalfPeriod(*half),
			ctrl.WithIdle(*idle),
		),
	)
	if err != nil {
		log.Fatalf("could not run server: %+v", err)
	}
}
