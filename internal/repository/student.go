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

	"github.com/uptrace/bun"

	"github.com/sookrat/studyapi/internal/models"
)

// StudentRepository exposes CRUD over students plus relation loading.
type StudentRepository struct {
	Repository[models.Student]
	db *bun.DB
}

func NewStudentRepository(db *bun.DB) *StudentRepository {
	return &StudentRepository{Repository: NewRepository[models.Student](db), db: db}
}

// GetWithItems loads one student together with their items, or (nil, nil)
// when the id does not exist.
func (r *StudentRepository) GetWithItems(ctx context.Context, id int64) (*models.Student, error) {
	student := new(models.Student)
	err := r.db.NewSelect().
		Model(student).
		Relation("Items").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return student, nil
}
