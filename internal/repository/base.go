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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
// Every operation runs in its own transaction: commit on success, rollback
// with the original error on failure.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T) (*T, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(entity).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, opts ListOptions) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().
		Model(&entities).
		OrderExpr("? ASC", bun.Ident(opts.orderBy())).
		Offset(opts.skip()).
		Limit(opts.limit()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) (*T, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("update requires at least one field")
	}

	var entity T
	found := false
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		query := tx.NewUpdate().Model(&entity).Where("id = ?", id)
		for _, column := range sortedColumns(fields) {
			query = query.Set("? = ?", bun.Ident(column), fields[column])
		}
		if _, err := query.Exec(ctx); err != nil {
			return err
		}

		if err := tx.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id int64) (*T, error) {
	var entity T
	found := false
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &entity, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// sortedColumns keeps SET clause ordering deterministic.
func sortedColumns(fields map[string]interface{}) []string {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
