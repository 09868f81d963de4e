// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/go-lpc/spireg/internal/crc16"
	"github.com/go-lpc/spireg/periph"
	"golang.org/x/xerrors"
)

const maxPins = 0x7 // ncs, copi and sclk

// Decoder reads (and validates) traces from an underlying data source.
// Decoder computes CRC-16 checksums on the fly.
type Decoder struct {
	r   io.Reader
	buf []byte
	err error
	crc crc16.Hash16
}

// NewDecoder creates a decoder that reads and validates data from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

// Decode reads the next trace from the stream.
func (dec *Decoder) Decode(tr *Trace) error {
	dec.crc.Reset()

	v := dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("trace: could not read header marker: %w", dec.err)
	}
	if v != trHeader {
		return xerrors.Errorf("trace: invalid header marker (got=0x%x, want=0x%x)", v, trHeader)
	}

	vers := dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("trace: could not read version: %w", dec.err)
	}
	if vers != version {
		return xerrors.Errorf("trace: invalid version (got=%d, want=%d)", vers, version)
	}

	period := dec.readU32()
	nruns := dec.readU32()
	if dec.err != nil {
		return xerrors.Errorf("trace: could not read trace header: %w", dec.err)
	}

	tr.Period = time.Duration(period) * time.Nanosecond
	tr.Runs = tr.Runs[:0]
	for i := uint32(0); i < nruns; i++ {
		pins := dec.readU8()
		n := dec.readU32()
		if dec.err != nil {
			return xerrors.Errorf("trace: could not read run %d/%d: %w", i, nruns, dec.err)
		}
		if pins > maxPins {
			return xerrors.Errorf("trace: invalid line levels 0x%x in run %d", pins, i)
		}
		tr.Runs = append(tr.Runs, Run{Pins: periph.PinsFrom(pins), N: n})
	}

	v = dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("trace: could not read trailer marker: %w", dec.err)
	}
	if v != trTrailer {
		return xerrors.Errorf("trace: invalid trailer marker (got=0x%x, want=0x%x)", v, trTrailer)
	}

	want := dec.crc.Sum16()
	crc := dec.readU16()
	if dec.err != nil {
		return xerrors.Errorf("trace: could not read CRC-16: %w", dec.err)
	}
	if crc != want {
		return xerrors.Errorf("trace: inconsistent CRC-16 (got=0x%x, want=0x%x)", crc, want)
	}

	return nil
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
	if dec.err == nil {
		_, _ = dec.crc.Write(p) // can not fail.
	}
}

func (dec *Decoder) readU8() uint8 {
	dec.read(dec.buf[:1])
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	dec.read(dec.buf[:2])
	return binary.BigEndian.Uint16(dec.buf[:2])
}

func (dec *Decoder) readU32() uint32 {
	dec.read(dec.buf[:4])
	return binary.BigEndian.Uint32(dec.buf[:4])
}
