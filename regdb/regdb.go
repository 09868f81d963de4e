// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regdb holds types to store and retrieve register settings of SPI
// register peripherals, and the log of the register writes they performed.
package regdb // import "github.com/go-lpc/spireg/regdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-lpc/spireg/periph"
)

const (
	host = "localhost"

	maxAddr = 0x7f
	maxData = 0xff
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// Value is the value of a register, within a named setting.
type Value struct {
	Addr periph.Addr
	Data uint8
}

// DB exposes convenience methods to retrieve register settings and
// record register commits.
type DB struct {
	db   *sql.DB
	name string // name of the database
}

// Open opens a connection to the register database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("regdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("regdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("regdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// LastSetting returns the name of the most recent register setting.
func (db *DB) LastSetting(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM settings ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("regdb: could not query last setting: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("regdb: could not get setting name: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("regdb: could not scan db for last setting: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("regdb: context error while retrieving last setting: %w", err)
	}

	if name == "" {
		return name, fmt.Errorf("regdb: no setting in %q db", db.name)
	}

	return name, nil
}

// Setting returns the register values of the named setting, ordered by address.
func (db *DB) Setting(ctx context.Context, name string) ([]Value, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	vs := make([]Value, 0, periph.NumRegs)
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT registers.addr, registers.data FROM registers
JOIN settings ON settings.identifier=registers.setting
WHERE settings.name=?
ORDER BY registers.addr
`,
		name,
	)
	if err != nil {
		return vs, fmt.Errorf("regdb: could not run setting query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var addr, data uint32
		err = rows.Scan(&addr, &data)
		if err != nil {
			return vs, fmt.Errorf("regdb: could not scan row %d for setting %q: %w", i, name, err)
		}
		if addr > maxAddr {
			return vs, fmt.Errorf("regdb: invalid register address 0x%x (row %d, setting %q)", addr, i, name)
		}
		if data > maxData {
			return vs, fmt.Errorf("regdb: invalid register value 0x%x (row %d, setting %q)", data, i, name)
		}
		i++

		vs = append(vs, Value{Addr: periph.Addr(addr), Data: uint8(data)})
	}

	if err := rows.Err(); err != nil {
		return vs, fmt.Errorf("regdb: could not scan db for setting %q: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return vs, fmt.Errorf("regdb: context error while retrieving setting %q: %w", name, err)
	}

	return vs, nil
}

// LogCommit records a register write performed during the named run.
func (db *DB) LogCommit(ctx context.Context, run string, c periph.Commit) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"INSERT INTO commits (run, tick, addr, data) VALUES (?, ?, ?, ?)",
		run, int64(c.Tick), int64(c.Addr), int64(c.Data),
	)
	if err != nil {
		return fmt.Errorf("regdb: could not log commit %+v for run %q: %w", c, run, err)
	}
	return nil
}
