// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/spireg/periph"
)

// ReadText reads a trace in its text format.
//
// Each line holds the levels of the nCS, COPI and SCLK lines (in that
// order, as a 3-digit binary number) and the number of ticks they are
// held for, separated by a semi-colon:
//
//	# ncs,copi,sclk;ticks
//	period;100ns
//	100;5
//	010;50
//	011;50
//
// Empty lines and lines starting with '#' are ignored.
func ReadText(r io.Reader) (*Trace, error) {
	var (
		tr   = Trace{Period: DefaultPeriod}
		scan = bufio.NewScanner(r)
		line int
	)
	for scan.Scan() {
		line++
		txt := strings.TrimSpace(scan.Text())
		if strings.HasPrefix(txt, "#") || txt == "" {
			continue
		}
		toks := strings.Split(txt, ";")
		if len(toks) != 2 {
			return nil, fmt.Errorf("trace: invalid text file:%d: line=%q", line, txt)
		}

		if toks[0] == "period" {
			v, err := time.ParseDuration(toks[1])
			if err != nil {
				return nil, fmt.Errorf(
					"trace: could not parse period %q (line:%d): %w",
					toks[1], line, err,
				)
			}
			if v <= 0 {
				return nil, fmt.Errorf("trace: invalid period %v (line:%d)", v, line)
			}
			tr.Period = v
			continue
		}

		if len(toks[0]) != 3 {
			return nil, fmt.Errorf("trace: invalid line levels %q (line:%d)", toks[0], line)
		}
		pins, err := strconv.ParseUint(toks[0], 2, 8)
		if err != nil {
			return nil, fmt.Errorf(
				"trace: could not parse line levels %q (line:%d): %w",
				toks[0], line, err,
			)
		}

		n, err := strconv.ParseUint(toks[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf(
				"trace: could not parse tick count %q (line:%d): %w",
				toks[1], line, err,
			)
		}

		tr.Append(periph.PinsFrom(uint8(pins)), uint32(n))
	}

	err := scan.Err()
	if err != nil {
		return nil, fmt.Errorf("trace: error while parsing text trace: %w", err)
	}

	return &tr, nil
}

// WriteText writes a trace in its text format.
func WriteText(w io.Writer, tr *Trace) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# ncs,copi,sclk;ticks\n")
	fmt.Fprintf(bw, "period;%v\n", tr.Period)
	for _, run := range tr.Runs {
		fmt.Fprintf(bw, "%03b;%d\n", run.Pins.Byte(), run.N)
	}
	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("trace: could not write text trace: %w", err)
	}
	return nil
}
