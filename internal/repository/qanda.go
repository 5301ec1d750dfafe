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

// QandARepository manages question/answer records.
type QandARepository struct {
	Repository[models.QandA]
	db *bun.DB
}

func NewQandARepository(db *bun.DB) *QandARepository {
	return &QandARepository{Repository: NewRepository[models.QandA](db), db: db}
}

func (r *QandARepository) Create(ctx context.Context, record *models.QandA) (*models.QandA, error) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	return r.Repository.Create(ctx, record)
}

// ListByUser returns the exchanges recorded for one user.
func (r *QandARepository) ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]*models.QandA, error) {
	records := make([]*models.QandA, 0)
	err := r.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		OrderExpr("? ASC", bun.Ident(opts.orderBy())).
		Offset(opts.skip()).
		Limit(opts.limit()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
