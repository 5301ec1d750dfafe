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

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/models"
	"github.com/sookrat/studyapi/internal/repository"
	"github.com/sookrat/studyapi/internal/validation"
)

type userCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
	IsActive *bool  `json:"is_active"`
}

type userUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=100"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (r *userUpdateRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Username != nil {
		fields["username"] = *r.Username
	}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	if r.Password != nil {
		fields["password"] = *r.Password
	}
	if r.FullName != nil {
		fields["full_name"] = *r.FullName
	}
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields
}

// UserHandler serves the /register resource. The password hash never leaves
// the server: the model excludes it from serialization.
type UserHandler struct{}

func (h *UserHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *UserHandler) create(c echo.Context) error {
	var req userCreateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	users := repository.NewUserRepository(selectedDB(c))
	created, err := users.Create(c.Request().Context(), user, req.Password)
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	users := repository.NewUserRepository(selectedDB(c))
	user, err := users.GetByID(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if user == nil {
		return errs.NewNotFoundError("user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) list(c echo.Context) error {
	users := repository.NewUserRepository(selectedDB(c))
	records, err := users.List(c.Request().Context(), listOptions(c))
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *UserHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req userUpdateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	fields := req.fields()
	if len(fields) == 0 {
		return errs.NewBadRequestError("no fields to update")
	}
	users := repository.NewUserRepository(selectedDB(c))
	updated, err := users.Update(c.Request().Context(), id, fields)
	if err != nil {
		return persistenceError(err)
	}
	if updated == nil {
		return errs.NewNotFoundError("user not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	users := repository.NewUserRepository(selectedDB(c))
	deleted, err := users.Delete(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if deleted == nil {
		return errs.NewNotFoundError("user not found")
	}
	return c.NoContent(http.StatusNoContent)
}
