// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simsrv

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/go-lpc/spireg/periph"
)

// Client is a connection to a control server.
type Client struct {
	conn net.Conn
	dec  *json.Decoder
	enc  *json.Encoder
}

// Dial connects to the control server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("simsrv: could not dial %q: %w", addr, err)
	}
	return &Client{
		conn: conn,
		dec:  json.NewDecoder(conn),
		enc:  json.NewEncoder(conn),
	}, nil
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Write sends a register-write transaction.
func (c *Client) Write(addr, data uint8) (Reply, error) {
	return c.Do("write", WriteArgs{Addr: addr, Data: data})
}

// Send sends a raw 16-bit frame.
func (c *Client) Send(f periph.Frame) (Reply, error) {
	return c.Do("frame", f)
}

// Abort sends the first n bits of f and deselects the peripheral.
func (c *Client) Abort(f periph.Frame, n int) (Reply, error) {
	return c.Do("abort", AbortArgs{Frame: f, Bits: n})
}

// Wait keeps the bus idle for n sampling ticks.
func (c *Client) Wait(n int) (Reply, error) {
	return c.Do("wait", n)
}

// Reset pulses the reset line of the peripheral.
func (c *Client) Reset() (Reply, error) {
	return c.Do("reset", nil)
}

// Regs retrieves the registers of the peripheral.
func (c *Client) Regs() (Reply, error) {
	return c.Do("regs", nil)
}

// Do sends the named command and waits for its reply.
func (c *Client) Do(name string, args interface{}) (Reply, error) {
	var (
		req = Request{Name: name}
		rep Reply
	)
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return rep, fmt.Errorf("simsrv: could not encode %q args: %w", name, err)
		}
		msg := json.RawMessage(raw)
		req.Args = &msg
	}

	err := c.enc.Encode(req)
	if err != nil {
		return rep, fmt.Errorf("simsrv: could not send %q request: %w", name, err)
	}

	err = c.dec.Decode(&rep)
	if err != nil {
		return rep, fmt.Errorf("simsrv: could not decode %q reply: %w", name, err)
	}

	if rep.Msg != "ok" {
		return rep, fmt.Errorf("simsrv: %q request failed: %s", name, rep.Msg)
	}
	return rep, nil
}
