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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMigratedStore opens a fresh store and applies the schema.
func newMigratedStore(t *testing.T) (*Connection, *MigrationManager) {
	t.Helper()
	conn := newTestConnection(t)
	mm := NewMigrationManager(conn.Bun(), GetLogger())
	require.NoError(t, mm.RunMigrations(context.Background()))
	return conn, mm
}

func TestMigrationsCreateAllTables(t *testing.T) {
	_, mm := newMigratedStore(t)

	tables, err := mm.ListTables(context.Background())
	require.NoError(t, err)

	for _, want := range SchemaTableNames() {
		assert.Contains(t, tables, want)
	}
	assert.Contains(t, tables, "migrations")
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, mm := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x')")
	require.NoError(t, err)

	// A second run must not fail, duplicate objects, or touch data.
	require.NoError(t, mm.RunMigrations(ctx))

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, "001", applied[0].Version)

	record, err := conn.QueryRow(ctx, "SELECT COUNT(*) AS n FROM student")
	require.NoError(t, err)
	assert.EqualValues(t, 1, record.Get("n"))
}

func TestForeignKeyRejectsOrphanRows(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO attendance (student_id, session_date, session_id, status) VALUES ('missing', '2025-09-01', 'CS101-L1', 'Present')")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err), "orphan insert must surface as a constraint violation, got: %v", err)

	_, err = conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x')")
	require.NoError(t, err)

	_, err = conn.Exec(ctx,
		"INSERT INTO attendance (student_id, session_date, session_id, status) VALUES ('S1', '2025-09-01', 'CS101-L1', 'Present')")
	assert.NoError(t, err)
}

func TestForeignKeyProtectsReferencedParent(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x')")
	require.NoError(t, err)
	_, err = conn.Exec(ctx,
		"INSERT INTO assessment (module_code, title, due_date) VALUES ('CS101', 'Coursework 1', '2025-10-01')")
	require.NoError(t, err)
	_, err = conn.Exec(ctx,
		"INSERT INTO submission (student_id, assessment_id, status) VALUES ('S1', 1, 'submitted')")
	require.NoError(t, err)

	_, err = conn.Exec(ctx, "DELETE FROM student WHERE student_id = 'S1'")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	// Removing the child first unblocks the parent delete.
	_, err = conn.Exec(ctx, "DELETE FROM submission WHERE student_id = 'S1'")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "DELETE FROM student WHERE student_id = 'S1'")
	assert.NoError(t, err)
}

func TestUniqueEmailConstraint(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x')")
	require.NoError(t, err)

	_, err = conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S2', 'Grace', 'Hopper', 'ada@example.edu', 'y')")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestAutoincrementKeysIncrease(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x')")
	require.NoError(t, err)

	var last int64
	for i := 0; i < 3; i++ {
		result, err := conn.Exec(ctx,
			"INSERT INTO alert (student_id, alert_type, reason) VALUES ('S1', 'attendance', 'low attendance')")
		require.NoError(t, err)
		id, err := result.LastInsertId()
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestOptionalColumnsRoundTripNull(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO student (student_id, first_name, lastname, email, password, year) VALUES ('S1', 'Ada', 'Lovelace', 'ada@example.edu', 'x', NULL)")
	require.NoError(t, err)

	record, err := conn.QueryRow(ctx, "SELECT student_id, year FROM student WHERE student_id = 'S1'")
	require.NoError(t, err)
	assert.Equal(t, "S1", record.Get("student_id"))
	assert.True(t, record.IsNullByName("year"))
}

func TestUserTableRequiresColumns(t *testing.T) {
	ctx := context.Background()
	conn, _ := newMigratedStore(t)

	_, err := conn.Exec(ctx,
		"INSERT INTO user (user_id, first_name, lastname, password_hash, role) VALUES ('u1', 'A', NULL, 'hash', 'staff')")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestRollbackMigrationNotSupported(t *testing.T) {
	_, mm := newMigratedStore(t)
	assert.Error(t, mm.RollbackMigration(context.Background(), "001"))
}
