// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/trace"
)

func record(t *testing.T, writes ...[2]uint8) *trace.Trace {
	t.Helper()
	rec := trace.NewRecorder(trace.DefaultPeriod)
	drv, err := ctrl.New(rec, ctrl.WithHalfPeriod(3), ctrl.WithIdle(10))
	if err != nil {
		t.Fatalf("could not create driver: %+v", err)
	}
	drv.Wait(5)
	for _, w := range writes {
		err = drv.Write(w[0], w[1])
		if err != nil {
			t.Fatalf("could not write 0x%02x: %+v", w[0], err)
		}
	}
	return rec.Trace()
}

func TestReplay(t *testing.T) {
	tmp, err := os.MkdirTemp("", "spi-replay-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	var (
		bin = filepath.Join(tmp, "run-001.trace")
		txt = filepath.Join(tmp, "run-002.txt")
	)

	{
		f, err := os.Create(bin)
		if err != nil {
			t.Fatalf("could not create binary trace: %+v", err)
		}
		defer f.Close()

		tr := record(t, [2]uint8{0x00, 0xf0}, [2]uint8{0x04, 0x80})
		err = trace.NewEncoder(f).Encode(tr)
		if err != nil {
			t.Fatalf("could not encode trace: %+v", err)
		}
		err = f.Close()
		if err != nil {
			t.Fatalf("could not close binary trace: %+v", err)
		}
	}

	{
		f, err := os.Create(txt)
		if err != nil {
			t.Fatalf("could not create text trace: %+v", err)
		}
		defer f.Close()

		tr := record(t, [2]uint8{0x01, 0xcc}, [2]uint8{0x30, 0xaa})
		err = trace.WriteText(f, tr)
		if err != nil {
			t.Fatalf("could not write trace: %+v", err)
		}
		err = f.Close()
		if err != nil {
			t.Fatalf("could not close text trace: %+v", err)
		}
	}

	out := new(bytes.Buffer)
	err = xmain(out, []string{bin, txt}, false)
	if err != nil {
		t.Fatalf("could not replay traces: %+v", err)
	}

	got := out.String()
	for _, want := range []string{
		"=== " + bin + " (ticks=",
		"commits=2)",
		"=== " + txt + " (ticks=",
		"commits=1)",
		"en_reg_out_7_0   <- 0xf0",
		"pwm_duty_cycle   <- 0x80",
		"en_reg_out_15_8  <- 0xcc",
		"  en_reg_out_15_8  0xcc",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}

	if i, j := strings.Index(got, bin), strings.Index(got, txt); i > j {
		t.Fatalf("results not displayed in input order:\n%s", got)
	}
}

func TestReplayRegisters(t *testing.T) {
	tmp, err := os.MkdirTemp("", "spi-replay-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "run.trace")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create trace: %+v", err)
	}
	defer f.Close()

	err = trace.NewEncoder(f).Encode(record(t, [2]uint8{0x02, 0x55}, [2]uint8{0x02, 0x56}))
	if err != nil {
		t.Fatalf("could not encode trace: %+v", err)
	}
	err = f.Close()
	if err != nil {
		t.Fatalf("could not close trace: %+v", err)
	}

	res, err := replay(fname, false)
	if err != nil {
		t.Fatalf("could not replay trace: %+v", err)
	}

	if got, want := len(res.commits), 2; got != want {
		t.Fatalf("invalid number of commits: got=%d, want=%d", got, want)
	}
	if got, want := res.regs.PWMEnableLow, uint8(0x56); got != want {
		t.Fatalf("invalid register: got=0x%02x, want=0x%02x", got, want)
	}
	if got, want := res.commits[1].Addr, periph.PWMEnableLow; got != want {
		t.Fatalf("invalid commit address: got=%v, want=%v", got, want)
	}
	if res.commits[0].Tick >= res.commits[1].Tick {
		t.Fatalf("commits out of order: %+v", res.commits)
	}
}

func TestReplayMissing(t *testing.T) {
	err := xmain(new(bytes.Buffer), []string{"testdata/not-there.trace"}, false)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
