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

package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-group/wellbeing/database"
	"github.com/pai-group/wellbeing/types"
)

// newStudentRepo opens a migrated throwaway store and returns a repository
// over the student table.
func newStudentRepo(t *testing.T) Repository[database.Student] {
	t.Helper()
	ctx := context.Background()

	conn, err := database.OpenConnection(ctx, filepath.Join(t.TempDir(), "repo_test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mm := database.NewMigrationManager(conn.Bun(), database.GetLogger())
	require.NoError(t, mm.RunMigrations(ctx))

	return NewRepository[database.Student](conn.Bun())
}

func newStudent(id string, year int64) *database.Student {
	s := &database.Student{
		StudentID: id,
		FirstName: "First" + id,
		LastName:  "Last" + id,
		Email:     fmt.Sprintf("%s@example.edu", id),
		Password:  "x",
	}
	if year > 0 {
		s.Year.Int64 = year
		s.Year.Valid = true
	}
	return s
}

func TestRepositoryCreateAndGetOne(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	require.NoError(t, repo.Create(ctx, newStudent("S1", 2)))

	got, err := repo.GetOne(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", got.StudentID)
	assert.Equal(t, "FirstS1 LastS1", got.FullName())
	assert.True(t, got.Year.Valid)
	assert.EqualValues(t, 2, got.Year.Int64)
}

func TestRepositoryListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	require.NoError(t, repo.Create(ctx, newStudent("S1", 1), newStudent("S2", 2), newStudent("S3", 2)))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	secondYears, err := repo.List(ctx, types.NewQueryFilter("year = ?", 2))
	require.NoError(t, err)
	assert.Len(t, secondYears, 2)

	n, err := repo.Count(ctx, types.NewQueryFilter("year = ?", 2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	student := newStudent("S1", 1)
	require.NoError(t, repo.Create(ctx, student))

	student.FirstName = "Renamed"
	require.NoError(t, repo.Update(ctx, student))

	got, err := repo.GetOne(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FirstName)

	require.NoError(t, repo.Delete(ctx, "S1"))
	_, err = repo.GetOne(ctx, "S1")
	assert.Error(t, err)
}

func TestRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	require.NoError(t, repo.Create(ctx, newStudent("S1", 1)))

	changed := newStudent("S1", 1)
	changed.FirstName = "Updated"
	changed.Email = "s1-new@example.edu"
	require.NoError(t, repo.Upsert(ctx, []string{"first_name", "email"}, []string{"student_id"}, changed))

	got, err := repo.GetOne(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.FirstName)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepositoryPage(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, newStudent(fmt.Sprintf("S%d", i), 1)))
	}

	page, err := repo.Page(ctx, types.NewPageRequestWithOrders(2, 2, []string{"student_id ASC"}))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "S3", page.Items[0].StudentID)
	assert.Equal(t, "S4", page.Items[1].StudentID)
}

func TestRepositoryTransactions(t *testing.T) {
	ctx := context.Background()
	conn, err := database.OpenConnection(ctx, filepath.Join(t.TempDir(), "repo_tx_test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mm := database.NewMigrationManager(conn.Bun(), database.GetLogger())
	require.NoError(t, mm.RunMigrations(ctx))
	repo := NewRepository[database.Student](conn.Bun())

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateWithTx(ctx, &tx, newStudent("S1", 1)))
	require.NoError(t, tx.Rollback())

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "rolled back insert must not persist")

	tx, err = conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateWithTx(ctx, &tx, newStudent("S2", 1)))
	require.NoError(t, tx.Commit())

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
