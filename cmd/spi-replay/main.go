// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spi-replay replays recorded line traces into simulated SPI register
// peripherals and displays the resulting register writes.
//
// Usage: spi-replay [options] file1.trace [file2.trace [...]]
//
// Traces may be stored in the binary or in the text format.
// Files are replayed concurrently, each into its own peripheral.
package main // import "github.com/go-lpc/spireg/cmd/spi-replay"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/trace"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetPrefix("spi-replay: ")
	log.SetFlags(0)

	var (
		verbose = flag.Bool("v", false, "enable verbose mode")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `spi-replay replays line traces into simulated SPI register peripherals.

Usage: spi-replay [options] file1.trace [file2.trace [...]]

Example:

 $> spi-replay ./run-001.trace ./run-002.txt

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing input trace file(s)")
	}

	err := xmain(os.Stdout, flag.Args(), *verbose)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type result struct {
	fname   string
	ticks   uint64
	regs    periph.Registers
	commits []periph.Commit
}

func xmain(w io.Writer, fnames []string, verbose bool) error {
	var (
		grp errgroup.Group
		res = make([]result, len(fnames))
	)

	for i := range fnames {
		i := i
		grp.Go(func() error {
			var err error
			res[i], err = replay(fnames[i], verbose)
			return err
		})
	}

	err := grp.Wait()
	if err != nil {
		return err
	}

	for _, r := range res {
		fmt.Fprintf(w, "=== %s (ticks=%d, commits=%d)\n", r.fname, r.ticks, len(r.commits))
		for _, c := range r.commits {
			fmt.Fprintf(w, "tick=%-10d %-16v <- 0x%02x\n", c.Tick, c.Addr, c.Data)
		}
		for i, v := range r.regs.Array() {
			fmt.Fprintf(w, "  %-16v 0x%02x\n", periph.Addr(i), v)
		}
	}

	return nil
}

func replay(fname string, verbose bool) (result, error) {
	res := result{fname: fname}

	tr, err := trace.Open(fname)
	if err != nil {
		return res, fmt.Errorf("could not open trace %q: %w", fname, err)
	}

	opts := []periph.Option{
		periph.WithObserver(func(c periph.Commit) {
			res.commits = append(res.commits, c)
		}),
	}
	if verbose {
		opts = append(opts, periph.WithLogger(log.New(os.Stdout, fname+": ", 0)))
	}

	dev := periph.New(opts...)
	tr.Replay(ctrl.Target(dev))

	res.ticks = dev.Ticks()
	res.regs = dev.Registers()
	return res, nil
}
