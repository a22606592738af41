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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateClause(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "attendance",
		Column:          "student_id",
		ReferenceTable:  "student",
		ReferenceColumn: "student_id",
	}
	assert.Equal(t, `("student_id") REFERENCES "student" ("student_id")`, fk.GenerateClause())

	fk.OnDelete = "CASCADE"
	fk.OnUpdate = "RESTRICT"
	assert.Equal(t,
		`("student_id") REFERENCES "student" ("student_id") ON DELETE CASCADE ON UPDATE RESTRICT`,
		fk.GenerateClause())
}

func TestGenerateConstraintName(t *testing.T) {
	fk := ForeignKeyConstraint{Table: "alert", Column: "student_id"}
	assert.Equal(t, "fk_alert_student_id", fk.GenerateConstraintName())

	fk.ConstraintName = "custom_name"
	assert.Equal(t, "custom_name", fk.GenerateConstraintName())
}

func TestDefaultConstraintsAreValid(t *testing.T) {
	fkm := NewForeignKeyManager(GetLogger())
	assert.Empty(t, fkm.ValidateConstraints())
	assert.Len(t, fkm.ListAllConstraints(), 5)
}

func TestConstraintsByTable(t *testing.T) {
	fkm := NewForeignKeyManager(GetLogger())

	submission := fkm.GetConstraintsByTable("submission")
	require.Len(t, submission, 2)

	assert.Len(t, fkm.GetConstraintsByTable("alert"), 1)
	assert.Empty(t, fkm.GetConstraintsByTable("student"))
	assert.Empty(t, fkm.GetConstraintsByTable("retention_rule"))
}

func TestValidateConstraintsRejectsBadActions(t *testing.T) {
	fkm := &ForeignKeyManager{constraints: []ForeignKeyConstraint{
		{Table: "alert", Column: "student_id", ReferenceTable: "student", ReferenceColumn: "student_id", OnDelete: "EXPLODE"},
		{Table: "", Column: "student_id", ReferenceTable: "student", ReferenceColumn: "student_id"},
	}}
	errs := fkm.ValidateConstraints()
	assert.Len(t, errs, 2)
}

func TestConfigurableForeignKeyManagerLoadsYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "foreign_keys.yaml")
	content := `foreign_keys:
  - table: attendance
    column: student_id
    reference_table: student
    reference_column: student_id
  - table: alert
    column: student_id
    reference_table: student
    reference_column: student_id
    on_delete: CASCADE
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfm, err := NewConfigurableForeignKeyManager(GetLogger(), configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, cfm.GetConfigPath())
	assert.Len(t, cfm.ListAllConstraints(), 2)
	assert.Empty(t, cfm.ValidateConstraints())

	alert := cfm.GetConstraintsByTable("alert")
	require.Len(t, alert, 1)
	assert.Equal(t, "CASCADE", alert[0].OnDelete)
}

func TestConfigurableForeignKeyManagerExport(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "foreign_keys.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("foreign_keys: []\n"), 0o644))

	cfm, err := NewConfigurableForeignKeyManager(GetLogger(), configPath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "exported.yaml")
	require.NoError(t, cfm.ExportToConfig(outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "foreign_keys")
}
