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
	"os"
)

// ErrDatabaseFileNotFound is returned by WipeDatabase when there is nothing
// to remove.
var ErrDatabaseFileNotFound = errors.New("database file not found")

// WipeDatabase removes the store file entirely. This is a development and
// test helper; normal operation never drops schema objects, let alone the
// file. All connections against the file must be closed first.
func WipeDatabase(path string) error {
	if path == "" || path == ":memory:" {
		return fmt.Errorf("cannot wipe database at path %q", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrDatabaseFileNotFound
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove database file: %w", err)
	}
	GetLogger().Info("Database file removed", "path", path)
	return nil
}
