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
	"database/sql"
	"fmt"
)

// Record is a materialized result row addressable both by positional index
// and by column name. SQL NULL is represented as an untyped nil value; []byte
// column values are normalized to string so that text columns behave the same
// regardless of which SQLite backend the shim driver selected.
type Record struct {
	columns []string
	index   map[string]int
	values  []interface{}
}

// Records is an ordered result set of materialized rows.
type Records []Record

// Columns returns the result column names in query order.
func (r Record) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Len returns the number of columns in the row.
func (r Record) Len() int { return len(r.values) }

// Value returns the value at the given positional index.
// It panics if the index is out of range, mirroring slice semantics.
func (r Record) Value(i int) interface{} {
	return r.values[i]
}

// Get returns the value of the named column, or nil if the column does not
// exist in the result set. Use Lookup to distinguish a NULL value from a
// missing column.
func (r Record) Get(name string) interface{} {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of the named column and whether the column exists.
func (r Record) Lookup(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// IsNull reports whether the value at the given index is SQL NULL.
func (r Record) IsNull(i int) bool {
	return r.values[i] == nil
}

// IsNullByName reports whether the named column holds SQL NULL. A missing
// column also reports true; use Lookup when the distinction matters.
func (r Record) IsNullByName(name string) bool {
	v, _ := r.Lookup(name)
	return v == nil
}

// First returns the first record of the set, or an error for an empty set.
func (rs Records) First() (Record, error) {
	if len(rs) == 0 {
		return Record{}, sql.ErrNoRows
	}
	return rs[0], nil
}

// scanRecords drains rows into materialized Records. The caller keeps
// ownership of rows and must check rows.Err via the returned error.
func scanRecords(rows *sql.Rows) (Records, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	var records Records
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, Record{
			columns: columns,
			index:   index,
			values:  values,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
