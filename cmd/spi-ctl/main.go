// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spi-ctl is an interactive shell controlling a spi-srv server.
//
// Usage: spi-ctl [options]
//
// Example:
//
//	$> spi-ctl -addr localhost:8877
//	spi> write en_reg_out_7_0 0xf0
//	spi> write 4 0x80
//	spi> abort 0x81cc 10
//	spi> regs
//	spi> quit
package main // import "github.com/go-lpc/spireg/cmd/spi-ctl"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/simsrv"
	"github.com/peterh/liner"
)

var (
	errQuit = errors.New("quit")
)

func main() {
	log.SetPrefix("spi-ctl: ")
	log.SetFlags(0)

	var (
		addr = flag.String("addr", "localhost:8877", "[ip]:port of the spi-srv server")
		hist = flag.String("history", filepath.Join(os.TempDir(), ".spi-ctl.history"), "path to history file")
	)

	flag.Parse()

	cli, err := simsrv.Dial(*addr)
	if err != nil {
		log.Fatalf("could not connect to server: %+v", err)
	}
	defer cli.Close()

	err = run(cli, *hist)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(cli requester, hist string) error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(complete)

	if f, err := os.Open(hist); err == nil {
		_, _ = term.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		f, err := os.Create(hist)
		if err != nil {
			log.Printf("could not save history: %+v", err)
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	sh := shell{cli: cli, out: os.Stdout}
	for {
		line, err := term.Prompt("spi> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("could not read command: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		err = sh.exec(line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintf(sh.out, "error: %+v\n", err)
		}
	}
}

var cmds = []string{"abort", "frame", "help", "quit", "regs", "reset", "wait", "write"}

func complete(line string) []string {
	toks := strings.Fields(line)
	switch {
	case len(toks) == 0:
		return cmds
	case len(toks) == 1 && !strings.HasSuffix(line, " "):
		var o []string
		for _, cmd := range cmds {
			if strings.HasPrefix(cmd, toks[0]) {
				o = append(o, cmd)
			}
		}
		return o
	case toks[0] == "write" && (len(toks) == 1 || len(toks) == 2 && !strings.HasSuffix(line, " ")):
		pre := ""
		if len(toks) == 2 {
			pre = toks[1]
		}
		var o []string
		for i := periph.Addr(0); i < periph.NumRegs; i++ {
			if name := i.String(); strings.HasPrefix(name, pre) {
				o = append(o, "write "+name)
			}
		}
		return o
	}
	return nil
}

type requester interface {
	Do(name string, args interface{}) (simsrv.Reply, error)
}

type shell struct {
	cli requester
	out io.Writer
}

func (sh *shell) exec(line string) error {
	toks := strings.Fields(line)
	name, args := toks[0], toks[1:]

	var (
		req interface{}
		err error
	)
	switch name {
	case "quit", "exit":
		return errQuit

	case "help":
		fmt.Fprintf(sh.out, `commands:
  write <addr|name> <data>  write data into a register
  frame <frame>             send a raw 16-bit frame
  abort <frame> <bits>      send the first bits of a frame, then deselect
  wait  <ticks>             keep the bus idle
  reset                     pulse the reset line
  regs                      display the registers
  quit                      quit the shell
`)
		return nil

	case "write":
		if len(args) != 2 {
			return fmt.Errorf("invalid write command %q", line)
		}
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		data, err := parseUint(args[1], 8)
		if err != nil {
			return fmt.Errorf("could not parse data %q: %w", args[1], err)
		}
		req = simsrv.WriteArgs{Addr: uint8(addr), Data: uint8(data)}

	case "frame":
		if len(args) != 1 {
			return fmt.Errorf("invalid frame command %q", line)
		}
		f, err := parseUint(args[0], 16)
		if err != nil {
			return fmt.Errorf("could not parse frame %q: %w", args[0], err)
		}
		req = periph.Frame(f)

	case "abort":
		if len(args) != 2 {
			return fmt.Errorf("invalid abort command %q", line)
		}
		f, err := parseUint(args[0], 16)
		if err != nil {
			return fmt.Errorf("could not parse frame %q: %w", args[0], err)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("could not parse number of bits %q: %w", args[1], err)
		}
		req = simsrv.AbortArgs{Frame: periph.Frame(f), Bits: n}

	case "wait":
		if len(args) != 1 {
			return fmt.Errorf("invalid wait command %q", line)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("could not parse number of ticks %q: %w", args[0], err)
		}
		req = n

	case "reset", "regs":
		if len(args) != 0 {
			return fmt.Errorf("invalid %s command %q", name, line)
		}

	default:
		return fmt.Errorf("unknown command %q", name)
	}

	rep, err := sh.cli.Do(name, req)
	if err != nil {
		return err
	}
	sh.print(rep)
	return nil
}

func (sh *shell) print(rep simsrv.Reply) {
	for _, c := range rep.Commits {
		fmt.Fprintf(sh.out, "tick=%-10d %-16v <- 0x%02x\n", c.Tick, c.Addr, c.Data)
	}
	for i, v := range rep.Regs.Array() {
		fmt.Fprintf(sh.out, "  %-16v 0x%02x\n", periph.Addr(i), v)
	}
}

func parseAddr(s string) (periph.Addr, error) {
	if addr, err := periph.ParseAddr(s); err == nil {
		return addr, nil
	}
	v, err := parseUint(s, 7)
	if err != nil {
		return 0, fmt.Errorf("could not parse address %q: %w", s, err)
	}
	return periph.Addr(v), nil
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}
