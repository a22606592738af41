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
	"fmt"
	"sync"
	"time"
)

// ConnectionPool maintains a bounded, reusable set of connections against a
// single store. Pooled connections carry exactly the same pragma
// configuration as factory connections (both go through openConnection) but
// share no cached state with them or with each other.
//
// The pool is an explicitly constructed, explicitly owned instance: create it
// at startup, pass it to callers, Close it at shutdown. There is no process
// global.
type ConnectionPool struct {
	cfg    *ConnectionConfig
	logger Logger

	mu     sync.Mutex
	free   chan *Connection
	inUse  int
	closed bool
}

// PoolStats is a snapshot of the pool's accounting.
type PoolStats struct {
	Size  int `json:"size"`
	InUse int `json:"in_use"`
	Free  int `json:"free"`
}

// NewConnectionPool opens cfg.PoolSize connections eagerly and returns the
// pool. Opening eagerly surfaces a broken store path at startup instead of on
// the first checkout.
func NewConnectionPool(ctx context.Context, cfg *ConnectionConfig, logger Logger) (*ConnectionPool, error) {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = DefaultConnectionConfig().PoolSize
	}

	pool := &ConnectionPool{
		cfg:    cfg,
		logger: logger,
		free:   make(chan *Connection, size),
	}

	for i := 0; i < size; i++ {
		conn, err := openConnection(ctx, cfg)
		if err != nil {
			_ = pool.Close()
			return nil, err
		}
		pool.free <- conn
	}

	logger.Debug("Connection pool created", "size", size, "path", cfg.Path)
	return pool, nil
}

// Acquire checks out a connection. It waits at most the configured acquire
// timeout (or until ctx is done) and then fails with ErrPoolExhausted; it
// never blocks indefinitely. Two concurrent acquires never receive the same
// underlying connection.
func (p *ConnectionPool) Acquire(ctx context.Context) (*Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, &ConnectionError{Path: p.cfg.Path, Err: fmt.Errorf("pool is closed")}
	}
	p.mu.Unlock()

	timeout := p.cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = DefaultConnectionConfig().AcquireTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case conn, ok := <-p.free:
		if !ok {
			return nil, &ConnectionError{Path: p.cfg.Path, Err: fmt.Errorf("pool is closed")}
		}
		p.mu.Lock()
		p.inUse++
		p.mu.Unlock()
		return conn, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrPoolExhausted, ctx.Err())
	case <-timer.C:
		p.logger.Warn("Connection pool exhausted", "timeout", timeout, "stats", p.Stats())
		return nil, fmt.Errorf("%w: no connection available within %s", ErrPoolExhausted, timeout)
	}
}

// Release returns a checked-out connection to the pool. Releasing into a
// closed pool closes the connection instead.
func (p *ConnectionPool) Release(conn *Connection) {
	if conn == nil {
		return
	}

	p.mu.Lock()
	if p.inUse > 0 {
		p.inUse--
	}
	closed := p.closed
	p.mu.Unlock()

	if closed {
		_ = conn.Close()
		return
	}

	select {
	case p.free <- conn:
	default:
		// Not one of ours, or released twice. Drop it rather than grow
		// past the bound.
		_ = conn.Close()
	}
}

// Stats returns a snapshot of the pool's accounting.
func (p *ConnectionPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Size:  cap(p.free),
		InUse: p.inUse,
		Free:  len(p.free),
	}
}

// Close drains and closes every idle connection and marks the pool closed.
// Connections still checked out are closed as they are released.
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var firstErr error
	for {
		select {
		case conn := <-p.free:
			if err := conn.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		default:
			if p.logger != nil {
				p.logger.Debug("Connection pool closed", "path", p.cfg.Path)
			}
			return firstErr
		}
	}
}
