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

type itemCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
	StudentID   int64   `json:"student_id" validate:"required,gt=0"`
}

type itemUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	StudentID   *int64   `json:"student_id" validate:"omitempty,gt=0"`
}

func (r *itemUpdateRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.Price != nil {
		fields["price"] = *r.Price
	}
	if r.Quantity != nil {
		fields["quantity"] = *r.Quantity
	}
	if r.StudentID != nil {
		fields["student_id"] = *r.StudentID
	}
	return fields
}

type ItemHandler struct{}

func (h *ItemHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *ItemHandler) create(c echo.Context) error {
	var req itemCreateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StudentID:   req.StudentID,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	items := repository.NewItemRepository(selectedDB(c))
	created, err := items.Create(c.Request().Context(), item)
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ItemHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items := repository.NewItemRepository(selectedDB(c))
	item, err := items.GetByID(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if item == nil {
		return errs.NewNotFoundError("item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) list(c echo.Context) error {
	items := repository.NewItemRepository(selectedDB(c))
	records, err := items.List(c.Request().Context(), listOptions(c))
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *ItemHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req itemUpdateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	fields := req.fields()
	if len(fields) == 0 {
		return errs.NewBadRequestError("no fields to update")
	}
	items := repository.NewItemRepository(selectedDB(c))
	updated, err := items.Update(c.Request().Context(), id, fields)
	if err != nil {
		return persistenceError(err)
	}
	if updated == nil {
		return errs.NewNotFoundError("item not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ItemHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items := repository.NewItemRepository(selectedDB(c))
	deleted, err := items.Delete(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if deleted == nil {
		return errs.NewNotFoundError("item not found")
	}
	return c.NoContent(http.StatusNoContent)
}
