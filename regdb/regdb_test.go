// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regdb

import (
	"context"
	"database/sql/driver"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/spireg/internal/fakedb"
	"github.com/go-lpc/spireg/periph"
)

func init() {
	drvName = "fakedb"
}

func TestOpen(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open regdb: %+v", err)
	}
	defer db.Close()
}

func TestLastSetting(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open regdb: %+v", err)
	}
	defer db.Close()

	_, err = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{"name"},
		Values: [][]driver.Value{
			{"pwm-50"},
		},
	}, func(ctx context.Context) error {
		name, err := db.LastSetting(ctx)
		if err != nil {
			return err
		}

		if got, want := name, "pwm-50"; got != want {
			t.Fatalf("invalid last setting: got=%q, want=%q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not retrieve last setting: %+v", err)
	}

	_, err = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{"name"},
	}, func(ctx context.Context) error {
		_, err := db.LastSetting(ctx)
		return err
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestSetting(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open regdb: %+v", err)
	}
	defer db.Close()

	for _, tc := range []struct {
		name string
		rows [][]driver.Value
		want []Value
		err  string
	}{
		{
			name: "pwm-50",
			rows: [][]driver.Value{
				{int64(0), int64(0x01)},
				{int64(2), int64(0x01)},
				{int64(4), int64(0x80)},
			},
			want: []Value{
				{Addr: periph.OutEnableLow, Data: 0x01},
				{Addr: periph.PWMEnableLow, Data: 0x01},
				{Addr: periph.PWMDutyCycle, Data: 0x80},
			},
		},
		{
			name: "empty",
			want: []Value{},
		},
		{
			name: "bad-addr",
			rows: [][]driver.Value{
				{int64(0x80), int64(0x01)},
			},
			err: `regdb: invalid register address 0x80 (row 0, setting "bad-addr")`,
		},
		{
			name: "bad-data",
			rows: [][]driver.Value{
				{int64(0x01), int64(0x100)},
			},
			err: `regdb: invalid register value 0x100 (row 0, setting "bad-data")`,
		},
		{
			name: "bad-type",
			rows: [][]driver.Value{
				{"x", int64(0x1)},
			},
			err: `regdb: could not scan row 0 for setting "bad-type"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fakedb.Run(context.Background(), fakedb.Rows{
				Names:  []string{"addr", "data"},
				Values: tc.rows,
			}, func(ctx context.Context) error {
				vs, err := db.Setting(ctx, tc.name)
				if err != nil {
					return err
				}
				if !reflect.DeepEqual(vs, tc.want) {
					t.Fatalf("invalid setting:\ngot= %+v\nwant=%+v", vs, tc.want)
				}
				return nil
			})
			switch {
			case tc.err == "" && err != nil:
				t.Fatalf("could not retrieve setting: %+v", err)
			case tc.err != "" && err == nil:
				t.Fatalf("expected an error")
			case tc.err != "":
				if got, want := err.Error(), tc.err; !strings.HasPrefix(got, want) {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
				}
			}
		})
	}
}

func TestLogCommit(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open regdb: %+v", err)
	}
	defer db.Close()

	execs, err := fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		return db.LogCommit(ctx, "run-042", periph.Commit{
			Tick: 1234,
			Addr: periph.PWMDutyCycle,
			Data: 0x80,
		})
	})
	if err != nil {
		t.Fatalf("could not log commit: %+v", err)
	}

	if got, want := len(execs), 1; got != want {
		t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
	}
	if got, want := execs[0].Query, "INSERT INTO commits"; !strings.HasPrefix(got, want) {
		t.Fatalf("invalid statement: got=%q", got)
	}
	want := []driver.Value{"run-042", int64(1234), int64(4), int64(0x80)}
	if got := execs[0].Args; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid arguments:\ngot= %#v\nwant=%#v", got, want)
	}
}
