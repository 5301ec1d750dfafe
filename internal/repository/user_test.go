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

package repository_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sookrat/studyapi/internal/auth"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/models"
	"github.com/sookrat/studyapi/internal/repository"
)

func createUser(t *testing.T, repo *repository.UserRepository, username, email string) *models.User {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}, "longpassword1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return created
}

func TestUserCreateHashesPassword(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)

	created := createUser(t, users, "alice", "alice@example.com")
	if created.PasswordHash == "" || created.PasswordHash == "longpassword1" {
		t.Fatal("password stored unhashed")
	}
	if !auth.VerifyPassword(created.PasswordHash, "longpassword1") {
		t.Fatal("stored hash does not verify against the plaintext")
	}
}

func TestUserCreateDuplicateUsernameConflict(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)

	createUser(t, users, "alice", "alice@example.com")
	_, err := users.Create(context.Background(), &models.User{
		Username: "alice",
		Email:    "other@example.com",
		IsActive: true,
	}, "longpassword1")

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUserCreateDuplicateEmailConflict(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)

	createUser(t, users, "alice", "alice@example.com")
	_, err := users.Create(context.Background(), &models.User{
		Username: "bob",
		Email:    "alice@example.com",
		IsActive: true,
	}, "longpassword1")

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	createUser(t, users, "alice", "alice@example.com")

	user, err := users.Authenticate(context.Background(), "alice", "longpassword1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", user)
	}

	wrong, err := users.Authenticate(context.Background(), "alice", "wrongpassword")
	if err != nil {
		t.Fatalf("authenticate wrong password: %v", err)
	}
	if wrong != nil {
		t.Fatal("wrong password must not authenticate")
	}

	missing, err := users.Authenticate(context.Background(), "nobody", "longpassword1")
	if err != nil {
		t.Fatalf("authenticate unknown user: %v", err)
	}
	if missing != nil {
		t.Fatal("unknown user must not authenticate")
	}
}

func TestUserUpdateRehashesPassword(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	created := createUser(t, users, "alice", "alice@example.com")

	updated, err := users.Update(context.Background(), created.ID, map[string]interface{}{
		"password": "newpassword99",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PasswordHash == created.PasswordHash {
		t.Fatal("password hash unchanged after password update")
	}
	if !auth.VerifyPassword(updated.PasswordHash, "newpassword99") {
		t.Fatal("new hash does not verify against the new password")
	}

	user, err := users.Authenticate(context.Background(), "alice", "longpassword1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user != nil {
		t.Fatal("old password still accepted after rotation")
	}
}

func TestGetByUsernameMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)

	user, err := users.GetByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil, got %+v", user)
	}
}
