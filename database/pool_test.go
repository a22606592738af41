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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, size int, acquireTimeout time.Duration) *ConnectionPool {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.Path = filepath.Join(t.TempDir(), "pool_test.sqlite3")
	cfg.PoolSize = size
	cfg.AcquireTimeout = acquireTimeout

	pool, err := NewConnectionPool(context.Background(), cfg, GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestPoolHandsOutDistinctConnections(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, 2, time.Second)

	first, err := pool.Acquire(ctx)
	require.NoError(t, err)
	second, err := pool.Acquire(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, second)

	stats := pool.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.InUse)
	assert.Equal(t, 0, stats.Free)

	pool.Release(first)
	pool.Release(second)

	stats = pool.Stats()
	assert.Equal(t, 0, stats.InUse)
	assert.Equal(t, 2, stats.Free)
}

func TestPoolConnectionsEnforceForeignKeys(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, 1, time.Second)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer pool.Release(conn)

	enabled, err := conn.ForeignKeysEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestPoolAcquireTimesOutWhenExhausted(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, 1, 100*time.Millisecond)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)

	start := time.Now()
	_, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	// A released connection becomes acquirable again.
	pool.Release(conn)
	again, err := pool.Acquire(ctx)
	require.NoError(t, err)
	pool.Release(again)
}

func TestPoolAcquireHonorsContextCancellation(t *testing.T) {
	pool := newTestPool(t, 1, time.Minute)

	conn, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPoolCloseRejectsFurtherAcquires(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, 2, time.Second)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)

	require.NoError(t, pool.Close())

	_, err = pool.Acquire(ctx)
	assert.Error(t, err)

	// Releasing into a closed pool closes the connection.
	pool.Release(conn)
	assert.Error(t, conn.Ping(ctx))
}

func TestPoolConcurrentCheckoutsNeverShare(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, 4, 2*time.Second)

	seen := make(chan *Connection, 4)
	for i := 0; i < 4; i++ {
		go func() {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				seen <- nil
				return
			}
			seen <- conn
		}()
	}

	conns := make(map[*Connection]bool)
	for i := 0; i < 4; i++ {
		conn := <-seen
		require.NotNil(t, conn)
		assert.False(t, conns[conn], "same connection handed to two concurrent acquires")
		conns[conn] = true
	}
	for conn := range conns {
		pool.Release(conn)
	}
}
