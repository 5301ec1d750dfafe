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

// Package repository implements generic CRUD over Bun models plus the
// entity-specific repositories built on top of it.
package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ListOptions describes offset pagination with ascending ordering. Callers
// are expected to cap Limit; the repository only substitutes defaults for
// missing values.
type ListOptions struct {
	Skip    int
	Limit   int
	OrderBy string
}

const defaultListLimit = 50

func (o ListOptions) skip() int {
	if o.Skip < 0 {
		return 0
	}
	return o.Skip
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return defaultListLimit
	}
	return o.Limit
}

func (o ListOptions) orderBy() string {
	if o.OrderBy == "" {
		return "id"
	}
	return o.OrderBy
}

// CrudRepository defines uniform CRUD over a generic entity type. Lookups
// that match no row return (nil, nil) — the explicit absence value — instead
// of an error.
type CrudRepository[T any] interface {
	// Create persists the entity and returns it with its generated id and
	// defaults populated.
	Create(ctx context.Context, entity *T) (*T, error)

	// GetByID returns the entity with that primary key, or nil when absent.
	GetByID(ctx context.Context, id int64) (*T, error)

	// List returns up to opts.Limit entities after skipping opts.Skip,
	// ordered ascending by opts.OrderBy.
	List(ctx context.Context, opts ListOptions) ([]*T, error)

	// Update applies only the supplied columns to the entity matching id and
	// returns the updated row, or nil when no row matched.
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*T, error)

	// Delete removes the entity matching id and returns its prior state, or
	// nil when no row matched.
	Delete(ctx context.Context, id int64) (*T, error)
}

// Repository combines CRUD with Bun query builders for entity-specific
// extensions.
type Repository[T any] interface {
	CrudRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
