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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnection opens a connection against a throwaway store file.
func newTestConnection(t *testing.T) *Connection {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.Path = filepath.Join(t.TempDir(), "wellbeing_test.sqlite3")
	conn, err := openConnection(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRecordDualAccess(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)

	_, err := conn.Exec(ctx, "CREATE TABLE sample (id INTEGER, label TEXT, score REAL)")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "INSERT INTO sample (id, label, score) VALUES (1, 'alpha', 2.5)")
	require.NoError(t, err)

	record, err := conn.QueryRow(ctx, "SELECT id, label, score FROM sample")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "label", "score"}, record.Columns())
	assert.Equal(t, 3, record.Len())

	// Positional and named access return the same values.
	assert.EqualValues(t, 1, record.Value(0))
	assert.Equal(t, "alpha", record.Value(1))
	assert.Equal(t, record.Value(1), record.Get("label"))
	assert.Equal(t, record.Value(2), record.Get("score"))
}

func TestRecordNullAndMissingColumns(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)

	_, err := conn.Exec(ctx, "CREATE TABLE sample (id INTEGER, label TEXT)")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "INSERT INTO sample (id, label) VALUES (1, NULL)")
	require.NoError(t, err)

	record, err := conn.QueryRow(ctx, "SELECT id, label FROM sample")
	require.NoError(t, err)

	// NULL is an untyped nil, distinguishable from a missing column.
	assert.True(t, record.IsNull(1))
	assert.True(t, record.IsNullByName("label"))
	assert.Nil(t, record.Get("label"))

	v, ok := record.Lookup("label")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = record.Lookup("no_such_column")
	assert.False(t, ok)
	assert.Nil(t, record.Get("no_such_column"))
}

func TestQueryRowNoRows(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)

	_, err := conn.Exec(ctx, "CREATE TABLE sample (id INTEGER)")
	require.NoError(t, err)

	_, err = conn.QueryRow(ctx, "SELECT id FROM sample")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestQueryReturnsAllRowsInOrder(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnection(t)

	_, err := conn.Exec(ctx, "CREATE TABLE sample (id INTEGER)")
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err = conn.Exec(ctx, "INSERT INTO sample (id) VALUES (?)", i)
		require.NoError(t, err)
	}

	records, err := conn.Query(ctx, "SELECT id FROM sample ORDER BY id")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.EqualValues(t, i+1, record.Get("id"))
	}

	first, err := records.First()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Get("id"))
}
