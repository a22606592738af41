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
	"errors"
	"fmt"
	"strings"
)

// ErrPoolExhausted is returned when the connection pool cannot hand out a
// connection within the configured acquire timeout.
var ErrPoolExhausted = errors.New("connection pool exhausted")

// ConnectionError reports a failure to open or verify a database connection.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failed (%s): %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MigrationError reports a DDL failure unrelated to "already exists". The
// store is left in whatever state the engine guarantees for failed DDL.
type MigrationError struct {
	Version string
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration failed: %v", e.Err)
	}
	return fmt.Sprintf("migration %s (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	BusyErr
)

// IsSqlError classifies an error raised by the SQLite engine. The shim driver
// does not expose structured error codes across both backends, so the
// classification matches on the engine's message text.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "no such column") ||
		strings.Contains(s, "has no column named") {
		return true, NoColumnErr
	}
	if strings.Contains(s, "no such index") {
		return true, NoIndexErr
	}
	if strings.Contains(s, "no such table") {
		return true, NoTableErr
	}
	if strings.Contains(s, "already exists") &&
		strings.Contains(s, "index") {
		return true, ExistIndexErr
	}
	if strings.Contains(s, "already exists") &&
		strings.Contains(s, "table") {
		return true, ExistTableErr
	}
	if strings.Contains(s, "duplicate column name") {
		return true, ExistColumnErr
	}
	if strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "constraint failed: unique") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not null constraint failed") ||
		strings.Contains(s, "constraint failed: not null") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "foreign key constraint failed") ||
		strings.Contains(s, "foreign key mismatch") {
		return true, ForeignKeyViolationErr
	}
	if strings.Contains(s, "check constraint failed") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "string or blob too big") {
		return true, DataTruncatedErr
	}
	if strings.Contains(s, "datatype mismatch") {
		return true, InvalidTypeCastErr
	}
	if strings.Contains(s, "database is locked") ||
		strings.Contains(s, "database table is locked") {
		return true, BusyErr
	}
	return false, UnknownErr
}

// IsConstraintViolation reports whether err is a UNIQUE, NOT NULL, FOREIGN
// KEY, or CHECK violation raised by the engine during DML. This layer never
// suppresses such errors; callers use this to decide whether to reject the
// business operation.
func IsConstraintViolation(err error) bool {
	is, kind := IsSqlError(err)
	if !is {
		return false
	}
	switch kind {
	case DuplicateKeyErr, NotNullViolationErr, ForeignKeyViolationErr, CheckConstraintViolationErr:
		return true
	default:
		return false
	}
}

// IsAlreadyExists reports whether err is a harmless "object already exists"
// DDL failure. Anything else that fails DDL becomes a MigrationError.
func IsAlreadyExists(err error) bool {
	is, kind := IsSqlError(err)
	if !is {
		return false
	}
	return kind == ExistTableErr || kind == ExistIndexErr || kind == ExistColumnErr
}
