// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trace holds functions to record, store and replay the line
// levels seen by a SPI register peripheral, one sampling tick at a time.
package trace // import "github.com/go-lpc/spireg/trace"

import (
	"fmt"
	"time"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/internal/mmap"
	"github.com/go-lpc/spireg/periph"
)

const (
	// DefaultPeriod is the sampling clock period of the reference bench (10 MHz).
	DefaultPeriod = 100 * time.Nanosecond
)

// Run is a sequence of identical consecutive samples.
type Run struct {
	Pins periph.Pins
	N    uint32 // number of sampling ticks
}

// Trace is a run-length encoded sequence of line samples.
type Trace struct {
	Period time.Duration // sampling clock period
	Runs   []Run
}

// Ticks returns the number of sampling ticks held by the trace.
func (tr *Trace) Ticks() uint64 {
	var n uint64
	for _, run := range tr.Runs {
		n += uint64(run.N)
	}
	return n
}

// Duration returns the duration of the trace.
func (tr *Trace) Duration() time.Duration {
	return time.Duration(tr.Ticks()) * tr.Period
}

// Append appends n samples of pins to the trace.
func (tr *Trace) Append(pins periph.Pins, n uint32) {
	if n == 0 {
		return
	}
	if i := len(tr.Runs) - 1; i >= 0 && tr.Runs[i].Pins == pins && tr.Runs[i].N <= ^uint32(0)-n {
		tr.Runs[i].N += n
		return
	}
	tr.Runs = append(tr.Runs, Run{Pins: pins, N: n})
}

// Replay feeds all the samples of the trace to sink.
func (tr *Trace) Replay(sink ctrl.Sink) {
	for _, run := range tr.Runs {
		for i := uint32(0); i < run.N; i++ {
			sink.Tick(run.Pins)
		}
	}
}

// Recorder is a sink recording every sample it receives.
type Recorder struct {
	tr Trace
}

// NewRecorder creates a new recorder for a sampling clock of the provided period.
func NewRecorder(period time.Duration) *Recorder {
	return &Recorder{tr: Trace{Period: period}}
}

// Tick records one sample.
func (rec *Recorder) Tick(pins periph.Pins) {
	rec.tr.Append(pins, 1)
}

// Trace returns the recorded trace.
func (rec *Recorder) Trace() *Trace {
	return &rec.tr
}

var _ ctrl.Sink = (*Recorder)(nil)

// Open memory-maps the named file and decodes the trace it holds,
// in either the binary or the text format.
func Open(fname string) (*Trace, error) {
	h, err := mmap.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("trace: could not open %q: %w", fname, err)
	}
	defer h.Close()

	var tr Trace
	switch {
	case h.Len() > 0 && h.At(0) == trHeader:
		err = NewDecoder(h.Reader()).Decode(&tr)
		if err != nil {
			return nil, fmt.Errorf("trace: could not decode %q: %w", fname, err)
		}
	default:
		v, err := ReadText(h.Reader())
		if err != nil {
			return nil, fmt.Errorf("trace: could not read %q: %w", fname, err)
		}
		tr = *v
	}

	return &tr, nil
}
