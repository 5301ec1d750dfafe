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

type studentCreateRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Age   int    `json:"age" validate:"gte=0"`
	Grade string `json:"grade" validate:"required,max=20"`
}

type studentUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Age   *int    `json:"age" validate:"omitempty,gte=0"`
	Grade *string `json:"grade" validate:"omitempty,max=20"`
}

func (r *studentUpdateRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Age != nil {
		fields["age"] = *r.Age
	}
	if r.Grade != nil {
		fields["grade"] = *r.Grade
	}
	return fields
}

type StudentHandler struct{}

func (h *StudentHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/:id/items", h.listItems)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *StudentHandler) create(c echo.Context) error {
	var req studentCreateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	students := repository.NewStudentRepository(selectedDB(c))
	created, err := students.Create(c.Request().Context(), &models.Student{
		Name:  req.Name,
		Age:   req.Age,
		Grade: req.Grade,
	})
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *StudentHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	students := repository.NewStudentRepository(selectedDB(c))
	student, err := students.GetByID(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if student == nil {
		return errs.NewNotFoundError("student not found")
	}
	return c.JSON(http.StatusOK, student)
}

// listItems returns the items owned by one student, 404 when the student
// itself does not exist.
func (h *StudentHandler) listItems(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	students := repository.NewStudentRepository(selectedDB(c))
	student, err := students.GetWithItems(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if student == nil {
		return errs.NewNotFoundError("student not found")
	}
	items := student.Items
	if items == nil {
		items = []*models.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *StudentHandler) list(c echo.Context) error {
	students := repository.NewStudentRepository(selectedDB(c))
	records, err := students.List(c.Request().Context(), listOptions(c))
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *StudentHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req studentUpdateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	fields := req.fields()
	if len(fields) == 0 {
		return errs.NewBadRequestError("no fields to update")
	}
	students := repository.NewStudentRepository(selectedDB(c))
	updated, err := students.Update(c.Request().Context(), id, fields)
	if err != nil {
		return persistenceError(err)
	}
	if updated == nil {
		return errs.NewNotFoundError("student not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *StudentHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	students := repository.NewStudentRepository(selectedDB(c))
	deleted, err := students.Delete(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if deleted == nil {
		return errs.NewNotFoundError("student not found")
	}
	return c.NoContent(http.StatusNoContent)
}
