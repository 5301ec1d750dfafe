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
	"time"

	"github.com/uptrace/bun"

	"github.com/sookrat/studyapi/internal/models"
)

// ItemRepository manages items and stamps created_at/updated_at itself so
// the timestamps are dialect independent.
type ItemRepository struct {
	Repository[models.Item]
	db *bun.DB
}

func NewItemRepository(db *bun.DB) *ItemRepository {
	return &ItemRepository{Repository: NewRepository[models.Item](db), db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	return r.Repository.Create(ctx, item)
}

func (r *ItemRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.Item, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
	}
	return r.Repository.Update(ctx, id, fields)
}

// ListByStudent returns the items owned by one student.
func (r *ItemRepository) ListByStudent(ctx context.Context, studentID int64, opts ListOptions) ([]*models.Item, error) {
	items := make([]*models.Item, 0)
	err := r.db.NewSelect().
		Model(&items).
		Where("student_id = ?", studentID).
		OrderExpr("? ASC", bun.Ident(opts.orderBy())).
		Offset(opts.skip()).
		Limit(opts.limit()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}
