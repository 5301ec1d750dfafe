/*
 * Copyright 2025 sookrat.
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

	"github.com/uptrace/bun"
)

// Migrator creates the schema for all registered models on one backend.
type Migrator struct {
	db     *bun.DB
	logger Logger
}

// NewMigrator returns a Migrator bound to the given Bun DB.
func NewMigrator(db *bun.DB, logger Logger) *Migrator {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &Migrator{db: db, logger: logger}
}

// CreateTables creates every registered table in priority order, appending
// the model's foreign key clauses so cascading deletes are enforced by the
// database.
func (m *Migrator) CreateTables(ctx context.Context) error {
	for _, model := range RegisteredModels() {
		query := m.db.NewCreateTable().
			Model(model.Instance()).
			IfNotExists()
		for _, fk := range model.ForeignKeys() {
			query = query.ForeignKey(fk)
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model.Instance(), err)
		}
		m.logger.Debug("Table ready", "model", fmt.Sprintf("%T", model.Instance()))
	}
	m.logger.Info("Database migrations completed", "tables", len(RegisteredModels()))
	return nil
}
