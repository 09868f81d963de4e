// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spi-sql loads a register setting from the register database,
// applies it to a simulated SPI register peripheral and logs the resulting
// register writes back into the database.
package main // import "github.com/go-lpc/spireg/cmd/spi-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/regdb"
)

const (
	dbname = "spireg"
)

func main() {
	log.SetPrefix("spi-sql: ")
	log.SetFlags(0)

	var (
		setting = flag.String("setting", "", "register setting to apply (default: last one)")
		run     = flag.String("run", "", "run name to log commits under (default: setting name)")
		half    = flag.Int("half", 50, "SCLK half-period, in sampling ticks")
		idle    = flag.Int("idle", 600, "idle sampling ticks after each transaction")
	)

	flag.Parse()

	db, err := regdb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open register db: %+v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	regs, err := apply(ctx, db, *setting, *run, ctrl.WithHalfPeriod(*half), ctrl.WithIdle(*idle))
	if err != nil {
		log.Fatalf("could not apply register setting: %+v", err)
	}
	log.Printf("registers: %v", regs)
}

type store interface {
	LastSetting(ctx context.Context) (string, error)
	Setting(ctx context.Context, name string) ([]regdb.Value, error)
	LogCommit(ctx context.Context, run string, c periph.Commit) error
}

func apply(ctx context.Context, db store, name, run string, opts ...ctrl.Option) (periph.Registers, error) {
	var regs periph.Registers

	if name == "" {
		v, err := db.LastSetting(ctx)
		if err != nil {
			return regs, fmt.Errorf("could not get last register setting: %w", err)
		}
		name = v
		log.Printf("setting: %q", name)
	}
	if run == "" {
		run = name
	}

	vals, err := db.Setting(ctx, name)
	if err != nil {
		return regs, fmt.Errorf("could not get register setting %q: %w", name, err)
	}

	var commits []periph.Commit
	dev := periph.New(periph.WithObserver(func(c periph.Commit) {
		commits = append(commits, c)
	}))

	drv, err := ctrl.New(ctrl.Target(dev), opts...)
	if err != nil {
		return regs, fmt.Errorf("could not create SPI controller: %w", err)
	}

	for _, v := range vals {
		err = drv.Write(uint8(v.Addr), v.Data)
		if err != nil {
			return regs, fmt.Errorf("could not write register %v: %w", v.Addr, err)
		}
	}

	for _, c := range commits {
		err = db.LogCommit(ctx, run, c)
		if err != nil {
			return regs, fmt.Errorf("could not log commit %+v: %w", c, err)
		}
	}

	if got, want := len(commits), len(vals); got != want {
		return dev.Registers(), fmt.Errorf(
			"register setting %q only partially applied (commits=%d, values=%d)",
			name, got, want,
		)
	}

	return dev.Registers(), nil
}
