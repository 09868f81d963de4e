// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spi-tdaq starts a TDAQ process hosting a simulated SPI register
// peripheral.
//
// Line traces received on the /pins input are replayed into the peripheral.
// Register snapshots are published on the /regs output.
package main // import "github.com/go-lpc/spireg/cmd/spi-tdaq"

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/trace"
)

func main() {
	cmd := flags.New()

	dev := newDevice(cmd.Args[0])

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.InputHandle("/pins", dev.pins)
	srv.OutputHandle("/regs", dev.regs)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type device struct {
	name string

	mu      sync.Mutex
	dev     *periph.Peripheral
	commits int

	data chan []byte
}

func newDevice(name string) *device {
	dev := &device{name: name}
	dev.init()
	return dev
}

func (dev *device) init() {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	dev.dev = periph.New(periph.WithObserver(func(periph.Commit) {
		dev.commits++
	}))
	dev.commits = 0
	dev.data = make(chan []byte, 1024)
}

func (dev *device) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (dev *device) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	dev.init()
	return nil
}

func (dev *device) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.mu.Lock()
	dev.dev.Reset()
	dev.commits = 0
	dev.mu.Unlock()
	return nil
}

func (dev *device) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *device) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dev.mu.Lock()
	n := dev.commits
	regs := dev.dev.Registers()
	dev.mu.Unlock()
	ctx.Msg.Debugf("received /stop command... -> commits=%d, regs=%v", n, regs)
	return nil
}

func (dev *device) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *device) pins(ctx tdaq.Context, src tdaq.Frame) error {
	n, err := dev.feed(src.Body)
	if err != nil {
		ctx.Msg.Errorf("could not replay line trace: %+v", err)
		return err
	}
	ctx.Msg.Debugf("replayed %d ticks", n)

	select {
	case dev.data <- dev.snapshot():
	default:
		ctx.Msg.Warnf("register snapshot dropped")
	}
	return nil
}

func (dev *device) regs(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

// feed replays the binary trace held in raw into the peripheral.
func (dev *device) feed(raw []byte) (uint64, error) {
	var tr trace.Trace
	err := trace.NewDecoder(bytes.NewReader(raw)).Decode(&tr)
	if err != nil {
		return 0, fmt.Errorf("could not decode line trace: %w", err)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	tr.Replay(ctrl.Target(dev.dev))

	return tr.Ticks(), nil
}

// snapshot encodes the current state of the peripheral:
// ticks (u64), number of commits (u32) and the register file (5 x u8).
func (dev *device) snapshot() []byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	buf := new(bytes.Buffer)
	enc := tdaq.NewEncoder(buf)
	enc.WriteU64(dev.dev.Ticks())
	enc.WriteU32(uint32(dev.commits))
	for _, v := range dev.dev.Registers().Array() {
		enc.WriteU8(v)
	}
	return buf.Bytes()
}
