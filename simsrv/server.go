// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simsrv exposes a simulated SPI register peripheral, and the
// controller driving it, over a JSON/TCP control connection.
package simsrv // import "github.com/go-lpc/spireg/simsrv"

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
)

// Request is a command sent to the server.
type Request struct {
	Name string           `json:"name"`
	Args *json.RawMessage `json:"args,omitempty"`
}

// Reply is the answer of the server to a request.
type Reply struct {
	Msg     string           `json:"msg"`
	Regs    periph.Registers `json:"regs"`
	Ticks   uint64           `json:"ticks"`
	Commits []periph.Commit  `json:"commits,omitempty"` // commits performed by the request
}

// WriteArgs are the arguments of the "write" command.
type WriteArgs struct {
	Addr uint8 `json:"addr"`
	Data uint8 `json:"data"`
}

// AbortArgs are the arguments of the "abort" command.
type AbortArgs struct {
	Frame periph.Frame `json:"frame"`
	Bits  int          `json:"bits"`
}

const resetTicks = 5 // reset pulse width, in sampling ticks

// server allows to control a simulated peripheral.
type server struct {
	ctl net.Listener
	msg *log.Logger

	dev     *periph.Peripheral
	drv     *ctrl.Driver
	commits []periph.Commit
}

// Serve runs a control server listening on addr.
func Serve(addr string, opts ...Option) error {
	srv, err := newServer(addr, opts...)
	if err != nil {
		return fmt.Errorf("could not create simsrv server: %w", err)
	}
	return srv.serve()
}

func newServer(addr string, opts ...Option) (*server, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not create simsrv server on %q: %w", addr, err)
	}

	srv := &server{
		ctl: ctl,
		msg: cfg.msg,
	}
	if srv.msg == nil {
		srv.msg = log.New(os.Stdout, "simsrv: ", 0)
	}

	popts := []periph.Option{
		periph.WithObserver(func(c periph.Commit) {
			srv.commits = append(srv.commits, c)
		}),
	}
	if cfg.verbose {
		popts = append(popts, periph.WithLogger(srv.msg))
	}
	srv.dev = periph.New(popts...)

	srv.drv, err = ctrl.New(ctrl.Target(srv.dev), cfg.drv...)
	if err != nil {
		_ = ctl.Close()
		return nil, fmt.Errorf("could not create SPI controller: %w", err)
	}

	return srv, nil
}

func (srv *server) addr() net.Addr {
	return srv.ctl.Addr()
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not serve %v: %+v", conn.RemoteAddr(), err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	dec := json.NewDecoder(conn)
	for {
		var req Request
		err := dec.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			srv.reply(conn, err)
			return fmt.Errorf("could not decode command request: %w", err)
		}

		err = srv.process(req)
		if err != nil {
			srv.msg.Printf("could not process %q request: %+v", req.Name, err)
		}
		srv.reply(conn, err)

		if strings.ToLower(req.Name) == "quit" {
			return nil
		}
	}
}

func (srv *server) process(req Request) error {
	srv.commits = srv.commits[:0]

	switch strings.ToLower(req.Name) {
	case "write":
		var args WriteArgs
		err := srv.decode(req, &args)
		if err != nil {
			return err
		}
		return srv.drv.Write(args.Addr, args.Data)

	case "frame":
		var f periph.Frame
		err := srv.decode(req, &f)
		if err != nil {
			return err
		}
		srv.drv.Send(f)
		return nil

	case "abort":
		var args AbortArgs
		err := srv.decode(req, &args)
		if err != nil {
			return err
		}
		return srv.drv.Abort(args.Frame, args.Bits)

	case "wait":
		var n int
		err := srv.decode(req, &n)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("invalid number of ticks %d", n)
		}
		srv.drv.Wait(n)
		return nil

	case "reset":
		srv.dev.SetReset(true)
		srv.drv.Wait(resetTicks)
		srv.dev.SetReset(false)
		srv.drv.Wait(resetTicks)
		return nil

	case "regs", "quit":
		return nil

	default:
		return fmt.Errorf("unknown command %q", req.Name)
	}
}

func (srv *server) decode(req Request, v interface{}) error {
	if req.Args == nil {
		return fmt.Errorf("missing %q payload", req.Name)
	}
	err := json.Unmarshal(*req.Args, v)
	if err != nil {
		return fmt.Errorf("could not decode %q payload: %w", req.Name, err)
	}
	return nil
}

func (srv *server) reply(conn net.Conn, err error) {
	rep := Reply{
		Msg:   "ok",
		Regs:  srv.dev.Registers(),
		Ticks: srv.dev.Ticks(),
	}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}
	if len(srv.commits) > 0 {
		rep.Commits = append([]periph.Commit(nil), srv.commits...)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
