// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-lpc/spireg/internal/crc16"
)

const (
	trHeader  = 0xb0 // trace header marker
	trTrailer = 0xa0 // trace trailer marker

	version = 1
)

// Encoder writes traces to an output stream.
// Encoder computes the CRC-16 checksum on the fly and appends it
// at the end of the stream.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
	crc crc16.Hash16
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

// Encode writes the trace to the stream, computes the corresponding
// CRC-16 checksum on the fly and appends it to the stream.
func (enc *Encoder) Encode(tr *Trace) error {
	if tr == nil {
		return nil
	}

	enc.crc.Reset()

	enc.writeU8(trHeader)
	if enc.err != nil {
		return fmt.Errorf("trace: could not write header marker: %w", enc.err)
	}
	enc.writeU8(version)
	enc.writeU32(uint32(tr.Period.Nanoseconds()))
	enc.writeU32(uint32(len(tr.Runs)))
	for _, run := range tr.Runs {
		enc.writeU8(run.Pins.Byte())
		enc.writeU32(run.N)
	}
	enc.writeU8(trTrailer)

	crc := enc.crc.Sum16()
	enc.writeU16(crc)

	if enc.err != nil {
		return fmt.Errorf("trace: could not encode trace: %w", enc.err)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
	_, _ = enc.crc.Write(p) // can not fail.
}

func (enc *Encoder) writeU8(v uint8) {
	enc.buf[0] = v
	enc.write(enc.buf[:1])
}

func (enc *Encoder) writeU16(v uint16) {
	binary.BigEndian.PutUint16(enc.buf[:2], v)
	enc.write(enc.buf[:2])
}

func (enc *Encoder) writeU32(v uint32) {
	binary.BigEndian.PutUint32(enc.buf[:4], v)
	enc.write(enc.buf[:4])
}
