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

// Package models defines the persisted entity types. Each struct doubles as
// the Bun table model and the JSON response shape; sensitive columns are
// excluded from serialization via `json:"-"`.
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Student owns zero or more Items; deleting a student cascades to them.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Age   int    `bun:"age,notnull" json:"age"`
	Grade string `bun:"grade,notnull" json:"grade"`

	Items []*Item `bun:"rel:has-many,join:id=student_id" json:"-"`
}

// Item belongs to a Student. UpdatedAt is refreshed on every mutation.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,notnull" json:"description"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Quantity    int       `bun:"quantity,notnull,default:0" json:"quantity"`
	StudentID   int64     `bun:"student_id,notnull" json:"student_id"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Student *Student `bun:"rel:belongs-to,join:student_id=id" json:"-"`
}

// User never exposes its password hash in responses.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	FullName     string    `bun:"full_name" json:"full_name,omitempty"`
	IsActive     bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// QandA records one question/answer exchange owned by a User.
type QandA struct {
	bun.BaseModel `bun:"table:q_and_a,alias:qa"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Question  string    `bun:"question,notnull" json:"question"`
	Answer    string    `bun:"answer,notnull" json:"answer"`
	Timestamp time.Time `bun:"timestamp,notnull" json:"timestamp"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}
