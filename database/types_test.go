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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, "student_wellbeing.sqlite3", cfg.Path)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.AcquireTimeout)
	assert.Equal(t, 1, cfg.MaxOpenConns)
}

func TestDefaultConfigEnablesMigrationsAndForeignKeys(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.DataMigrateConfig.EnableMigrateOnStartup)
	assert.True(t, cfg.DataMigrateConfig.EnableForeignKey)
	assert.False(t, cfg.DataInitConfig.AutoInitOnStartup)
	assert.Equal(t, "development", cfg.DataInitConfig.Environment)
}

func TestLoadConfigFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `connection:
  path: /tmp/custom.sqlite3
  pool_size: 8
migrate:
  enable_foreign_key: false
init:
  environment: production
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.sqlite3", cfg.ConnectionConfig.Path)
	assert.Equal(t, 8, cfg.ConnectionConfig.PoolSize)
	assert.False(t, cfg.DataMigrateConfig.EnableForeignKey)
	assert.Equal(t, "production", cfg.DataInitConfig.Environment)

	// Keys not present in the file keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.ConnectionConfig.AcquireTimeout)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: ["), 0o644))
	_, err = LoadConfigFile(path)
	assert.Error(t, err)
}

func TestSchemaTableNamesOrder(t *testing.T) {
	names := SchemaTableNames()
	require.Len(t, names, 9)

	// Parents precede the tables that reference them.
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	assert.Less(t, index["student"], index["attendance"])
	assert.Less(t, index["student"], index["submission"])
	assert.Less(t, index["student"], index["wellbeing_record"])
	assert.Less(t, index["student"], index["alert"])
	assert.Less(t, index["assessment"], index["submission"])
}
