// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/spireg/ctrl"
	"github.com/go-lpc/spireg/periph"
	"github.com/go-lpc/spireg/regdb"
)

type fakeStore struct {
	last     string
	settings map[string][]regdb.Value
	logged   map[string][]periph.Commit
}

func (db *fakeStore) LastSetting(ctx context.Context) (string, error) {
	if db.last == "" {
		return "", fmt.Errorf("no setting")
	}
	return db.last, nil
}

func (db *fakeStore) Setting(ctx context.Context, name string) ([]regdb.Value, error) {
	vs, ok := db.settings[name]
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", name)
	}
	return vs, nil
}

func (db *fakeStore) LogCommit(ctx context.Context, run string, c periph.Commit) error {
	if db.logged == nil {
		db.logged = make(map[string][]periph.Commit)
	}
	db.logged[run] = append(db.logged[run], c)
	return nil
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	opts := []ctrl.Option{ctrl.WithHalfPeriod(2), ctrl.WithIdle(4)}

	db := &fakeStore{
		last: "pwm-half",
		settings: map[string][]regdb.Value{
			"pwm-half": {
				{Addr: periph.OutEnableLow, Data: 0xff},
				{Addr: periph.PWMEnableLow, Data: 0x0f},
				{Addr: periph.PWMDutyCycle, Data: 0x80},
			},
			"bad": {
				{Addr: periph.OutEnableHigh, Data: 0x01},
				{Addr: 0x42, Data: 0x01},
			},
		},
	}

	t.Run("last", func(t *testing.T) {
		regs, err := apply(ctx, db, "", "", opts...)
		if err != nil {
			t.Fatalf("could not apply setting: %+v", err)
		}
		want := periph.Registers{
			OutEnableLow: 0xff,
			PWMEnableLow: 0x0f,
			PWMDutyCycle: 0x80,
		}
		if regs != want {
			t.Fatalf("invalid registers:\ngot= %v\nwant=%v", regs, want)
		}
		var addrs []periph.Addr
		for _, c := range db.logged["pwm-half"] {
			addrs = append(addrs, c.Addr)
		}
		if got, want := addrs, []periph.Addr{periph.OutEnableLow, periph.PWMEnableLow, periph.PWMDutyCycle}; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid logged commits: got=%v, want=%v", got, want)
		}
	})

	t.Run("run-name", func(t *testing.T) {
		_, err := apply(ctx, db, "pwm-half", "run-042", opts...)
		if err != nil {
			t.Fatalf("could not apply setting: %+v", err)
		}
		if got, want := len(db.logged["run-042"]), 3; got != want {
			t.Fatalf("invalid number of logged commits: got=%d, want=%d", got, want)
		}
	})

	t.Run("partial", func(t *testing.T) {
		regs, err := apply(ctx, db, "bad", "", opts...)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if !strings.Contains(err.Error(), "only partially applied (commits=1, values=2)") {
			t.Fatalf("invalid error: %+v", err)
		}
		if got, want := regs.OutEnableHigh, uint8(0x01); got != want {
			t.Fatalf("invalid register: got=0x%02x, want=0x%02x", got, want)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := apply(ctx, db, "not-there", "", opts...)
		if err == nil {
			t.Fatalf("expected an error")
		}
	})

	t.Run("bad-ctrl", func(t *testing.T) {
		_, err := apply(ctx, db, "pwm-half", "", ctrl.WithHalfPeriod(0))
		if err == nil {
			t.Fatalf("expected an error")
		}
	})
}
