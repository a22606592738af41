/*
 * Copyright 2025 pai-group.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Connection is an independent handle on the SQLite store with foreign key
// enforcement active. Query results materialize as dual-access Records.
//
// A Connection is not safe for concurrent use; concurrent access must go
// through distinct connections or distinct pool checkouts.
type Connection struct {
	cfg   *ConnectionConfig
	db    *bun.DB
	sqlDB *sql.DB
	path  string
}

// openConnection opens a fully configured connection: a single pinned SQLite
// handle with foreign keys and busy timeout applied and verified. Every code
// path that hands a connection to a caller (factory or pool) goes through
// here, so pragma configuration is identical everywhere.
func openConnection(ctx context.Context, cfg *ConnectionConfig) (*Connection, error) {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	if cfg.Path == "" {
		return nil, &ConnectionError{Path: cfg.Path, Err: fmt.Errorf("database path cannot be empty")}
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, cfg.Path)
	if err != nil {
		return nil, &ConnectionError{Path: cfg.Path, Err: err}
	}

	// Pin the sql.DB to one underlying handle so per-connection pragmas
	// stick and an in-memory store is not discarded between statements.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if cfg.SlowQueryTime > 0 {
		db.AddQueryHook(&SlowQueryHook{
			fromEnv:  "DB_SLOW_QUERY_LOG",
			slowTime: cfg.SlowQueryTime,
			writer:   defaultHookWriter(),
		})
	}

	conn := &Connection{cfg: cfg, db: db, sqlDB: sqlDB, path: cfg.Path}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := conn.applyPragmas(ctxTimeout); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Path: cfg.Path, Err: err}
	}
	return conn, nil
}

// applyPragmas turns on foreign key enforcement and the busy timeout, then
// reads the pragma back to verify the engine accepted it.
func (c *Connection) applyPragmas(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if c.cfg.BusyTimeout > 0 {
		stmt := fmt.Sprintf("PRAGMA busy_timeout = %d", c.cfg.BusyTimeout.Milliseconds())
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	enabled, err := c.ForeignKeysEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify foreign key pragma: %w", err)
	}
	if !enabled {
		return fmt.Errorf("engine rejected foreign key pragma")
	}
	return nil
}

// ForeignKeysEnabled reads the foreign_keys pragma from the engine.
func (c *Connection) ForeignKeysEnabled(ctx context.Context) (bool, error) {
	var enabled int
	if err := c.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return false, err
	}
	return enabled == 1, nil
}

// Exec executes a statement that returns no rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Query executes a query and materializes every result row as a Record
// addressable by index and by column name.
func (c *Connection) Query(ctx context.Context, query string, args ...interface{}) (Records, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

// QueryRow executes a query and returns its first row, or sql.ErrNoRows.
func (c *Connection) QueryRow(ctx context.Context, query string, args ...interface{}) (Record, error) {
	records, err := c.Query(ctx, query, args...)
	if err != nil {
		return Record{}, err
	}
	return records.First()
}

// Begin starts a transaction on the connection. Callers own their own
// transaction boundaries; migrations manage theirs separately.
func (c *Connection) Begin(ctx context.Context) (bun.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// Bun returns the Bun database bound to this connection.
func (c *Connection) Bun() *bun.DB { return c.db }

// DB returns the raw sql.DB bound to this connection.
func (c *Connection) DB() *sql.DB { return c.sqlDB }

// Path returns the store path this connection was opened against.
func (c *Connection) Path() string { return c.path }

// Ping verifies the connection is still usable.
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the OS-level handle. The caller that opened the connection
// is responsible for calling it; pooled connections are closed by the pool.
func (c *Connection) Close() error {
	return c.db.Close()
}
