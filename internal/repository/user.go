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

	"github.com/sookrat/studyapi/internal/auth"
	"github.com/sookrat/studyapi/internal/database"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/models"
)

// UserRepository layers credential handling over the generic repository:
// passwords arrive in the "password" field and are stored only as bcrypt
// hashes, and unique username/email collisions surface as conflict errors.
type UserRepository struct {
	Repository[models.User]
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{Repository: NewRepository[models.User](db), db: db}
}

// Create stores a new user. The Password field of the input carries the
// plaintext; it is hashed before the row is written. Duplicate usernames or
// emails yield a conflict error, whether caught by the pre-check or by the
// database unique constraint.
func (r *UserRepository) Create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	taken, err := r.exists(ctx, "username", user.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.NewConflictError("username already registered")
	}
	taken, err = r.exists(ctx, "email", user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.NewConflictError("email already registered")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := r.Repository.Create(ctx, user)
	if err != nil {
		if database.IsConflict(err) {
			return nil, errs.NewConflictError("username or email already registered")
		}
		return nil, err
	}
	return created, nil
}

// Update applies a partial update. A "password" field is replaced with a
// fresh bcrypt hash under the password_hash column.
func (r *UserRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.User, error) {
	if password, ok := fields["password"]; ok {
		plain, _ := password.(string)
		hash, err := auth.HashPassword(plain)
		if err != nil {
			return nil, err
		}
		delete(fields, "password")
		fields["password_hash"] = hash
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
	}
	updated, err := r.Repository.Update(ctx, id, fields)
	if err != nil {
		if database.IsConflict(err) {
			return nil, errs.NewConflictError("username or email already registered")
		}
		return nil, err
	}
	return updated, nil
}

// GetByUsername returns (nil, nil) when no such user exists.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when the credentials match, and (nil, nil)
// for both unknown usernames and wrong passwords.
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	return r.db.NewSelect().
		Model((*models.User)(nil)).
		Where("? = ?", bun.Ident(column), value).
		Exists(ctx)
}
