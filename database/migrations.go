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
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager applies the canonical schema idempotently. Tables are
// created with IF NOT EXISTS in catalog priority order; they are never
// dropped or altered destructively, and existing data is untouched.
type MigrationManager struct {
	db          *bun.DB
	logger      Logger
	config      *Config
	environment string
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// NewMigrationManager constructs a MigrationManager using the provided Bun
// database and logger. Configuration defaults to the globally initialized
// config, or the package defaults when none was loaded.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	cfg := activeConfig()
	return &MigrationManager{
		db:          db,
		logger:      logger,
		config:      cfg,
		environment: cfg.DataInitConfig.Environment,
	}
}

// SetEnvironment sets the environment used when seeding data from SQL files.
func (mm *MigrationManager) SetEnvironment(env string) {
	mm.environment = env
}

// SetConfig overrides the configuration consulted for migration options.
func (mm *MigrationManager) SetConfig(cfg *Config) {
	if cfg != nil {
		mm.config = cfg
	}
}

// RunMigrations creates the migration tracking table if needed and executes
// all registered migrations in ascending version order. Invoking it twice
// produces the same final schema with no errors and no duplicate objects.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	// silent migration
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if mm.db == nil {
		return &MigrationError{Err: fmt.Errorf("database not initialized")}
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return &MigrationError{Name: "migrations", Err: fmt.Errorf("failed to create migrations table: %w", err)}
	}

	migrations := mm.getAllMigrations()

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return err
		}
	}

	if mm.logger != nil {
		mm.logger.Info("Database migrations completed!")
	}

	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil && !IsAlreadyExists(err) {
		return err
	}
	return nil
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create the nine wellbeing tables with their constraints",
			Up:          mm.createBaseTables,
		},
	}
	if mm.config.DataInitConfig.AutoInitOnMigration {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "seed_initial_data",
			Description: "Seed initial data",
			Up:          mm.seedInitialData,
		})
	}
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return &MigrationError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	if exists {
		return nil
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return &MigrationError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	var committed bool
	defer func(tx bun.Tx) {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && mm.logger != nil {
				mm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}(tx)

	if err := migration.Up(ctx, tx); err != nil {
		return &MigrationError{Version: migration.Version, Name: migration.Name, Err: err}
	}

	migrationRecord := &Migration{
		Version:     migration.Version,
		Name:        migration.Name,
		AppliedAt:   time.Now(),
		Description: migration.Description,
	}

	_, err = tx.NewInsert().
		Model(migrationRecord).
		Exec(ctx)
	if err != nil {
		return &MigrationError{Version: migration.Version, Name: migration.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &MigrationError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	committed = true
	if mm.logger != nil {
		mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	}

	return nil
}

// createBaseTables issues CREATE TABLE IF NOT EXISTS for every catalog model
// in priority order, attaching the foreign key clauses the catalog declares
// for each table. An "already exists" response from the engine is not an
// error; anything else aborts the migration.
func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	fkm := mm.foreignKeyManager()

	for _, model := range RegisteredModelInstances() {
		query := db.NewCreateTable().
			Model(model).
			IfNotExists()

		if fkm != nil {
			tableName := mm.tableName(model)
			for _, constraint := range fkm.GetConstraintsByTable(tableName) {
				query = query.ForeignKey(constraint.GenerateClause())
			}
		}

		if _, err := query.Exec(ctx); err != nil && !IsAlreadyExists(err) {
			return fmt.Errorf("failed to create table %s: %w", getModelName(model), err)
		}
	}
	return nil
}

// foreignKeyManager returns the constraint source: the YAML file when one is
// configured, otherwise the code-defined catalog constraints. Returns nil
// when foreign key emission is disabled.
func (mm *MigrationManager) foreignKeyManager() *ForeignKeyManager {
	if !mm.config.DataMigrateConfig.EnableForeignKey {
		return nil
	}

	configPath := mm.config.DataMigrateConfig.ForeignKeyFile
	if configPath != "" {
		cfm, err := NewConfigurableForeignKeyManager(mm.logger, configPath)
		if err == nil {
			if errs := cfm.ValidateConstraints(); len(errs) > 0 {
				for _, err := range errs {
					if mm.logger != nil {
						mm.logger.Debug("Foreign key constraint validation failed", "error", err.Error())
					}
				}
			} else {
				return cfm.ForeignKeyManager
			}
		}
	}
	return NewForeignKeyManager(mm.logger)
}

func (mm *MigrationManager) tableName(model interface{}) string {
	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return mm.db.Table(typ).Name
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// SeedData seeds initial data from SQL files outside the migration flow.
func (mm *MigrationManager) SeedData(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return mm.seedInitialData(ctx, mm.db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, db bun.IDB) error {
	sqlManager := NewSQLInitManager(mm.db, mm.environment)
	if mm.config.DataInitConfig.Filepath != "" {
		sqlManager.SetSQLRootPath(mm.config.DataInitConfig.Filepath)
	}

	if mm.logger != nil {
		mm.logger.Info("Starting data initialization using SQL files", "environment", mm.environment)
	}

	if err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}

	if mm.logger != nil {
		mm.logger.Info("SQL file initialization completed")
	}

	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

// ListTables returns the user tables currently present in the store.
func (mm *MigrationManager) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := mm.db.NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
	).Scan(ctx, &tables)
	return tables, err
}

// RollbackMigration is currently not implemented; schema objects are only
// ever re-asserted, never dropped, by normal operation.
func (mm *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	return fmt.Errorf("migration rollback is not implemented yet")
}
