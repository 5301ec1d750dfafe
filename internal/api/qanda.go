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
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/llm"
	"github.com/sookrat/studyapi/internal/models"
	"github.com/sookrat/studyapi/internal/repository"
	"github.com/sookrat/studyapi/internal/validation"
)

type qandaCreateRequest struct {
	Question string `json:"question" validate:"required,max=500"`
	Answer   string `json:"answer" validate:"required"`
}

type qandaUpdateRequest struct {
	Question *string `json:"question" validate:"omitempty,max=500"`
	Answer   *string `json:"answer"`
}

func (r *qandaUpdateRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Question != nil {
		fields["question"] = *r.Question
	}
	if r.Answer != nil {
		fields["answer"] = *r.Answer
	}
	return fields
}

type askRequest struct {
	Question    string   `json:"question" validate:"required,min=3,max=800"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"max_tokens" validate:"omitempty,gte=50,lte=4096"`
	SaveToDB    *bool    `json:"save_to_db"`
}

// save reports whether the exchange should be persisted. Omitting the field
// opts in.
func (r *askRequest) save() bool {
	return r.SaveToDB == nil || *r.SaveToDB
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Saved    bool   `json:"saved"`
	SavedID  *int64 `json:"saved_id,omitempty"`
}

// QandAHandler serves the question/answer log and the AI ask endpoints.
type QandAHandler struct {
	LLM          *llm.Client
	DefaultModel string
}

func (h *QandAHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/me", h.listMine)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/ask", h.ask)
	g.POST("/ask-stream", h.askStream)
}

func (h *QandAHandler) create(c echo.Context) error {
	var req qandaCreateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	records := repository.NewQandARepository(selectedDB(c))
	created, err := records.Create(c.Request().Context(), &models.QandA{
		Question: req.Question,
		Answer:   req.Answer,
		UserID:   currentUser(c).ID,
	})
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *QandAHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	records := repository.NewQandARepository(selectedDB(c))
	record, err := records.GetByID(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if record == nil {
		return errs.NewNotFoundError("q&a record not found")
	}
	return c.JSON(http.StatusOK, record)
}

func (h *QandAHandler) list(c echo.Context) error {
	records := repository.NewQandARepository(selectedDB(c))
	results, err := records.List(c.Request().Context(), listOptions(c))
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusOK, results)
}

// listMine returns only the exchanges recorded for the authenticated user.
func (h *QandAHandler) listMine(c echo.Context) error {
	records := repository.NewQandARepository(selectedDB(c))
	results, err := records.ListByUser(c.Request().Context(), currentUser(c).ID, listOptions(c))
	if err != nil {
		return persistenceError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func (h *QandAHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req qandaUpdateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	fields := req.fields()
	if len(fields) == 0 {
		return errs.NewBadRequestError("no fields to update")
	}
	records := repository.NewQandARepository(selectedDB(c))
	updated, err := records.Update(c.Request().Context(), id, fields)
	if err != nil {
		return persistenceError(err)
	}
	if updated == nil {
		return errs.NewNotFoundError("q&a record not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *QandAHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	records := repository.NewQandARepository(selectedDB(c))
	deleted, err := records.Delete(c.Request().Context(), id)
	if err != nil {
		return persistenceError(err)
	}
	if deleted == nil {
		return errs.NewNotFoundError("q&a record not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *QandAHandler) ask(c echo.Context) error {
	var req askRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	opts := llm.Options{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	answer, err := h.LLM.Chat(c.Request().Context(), req.Question, opts)
	if err != nil {
		return errs.NewInternalServerError("text generation failed: " + err.Error())
	}

	resp := askResponse{
		Question: req.Question,
		Answer:   answer,
		Model:    h.modelName(req.Model),
	}
	if req.save() {
		records := repository.NewQandARepository(selectedDB(c))
		saved, err := records.Create(c.Request().Context(), &models.QandA{
			Question:  req.Question,
			Answer:    answer,
			Timestamp: time.Now().UTC(),
			UserID:    currentUser(c).ID,
		})
		if err != nil {
			return persistenceError(err)
		}
		resp.Saved = true
		resp.SavedID = &saved.ID
	}
	return c.JSON(http.StatusOK, resp)
}

// askStream writes answer fragments as they arrive. Once the first byte is
// out the status is committed, so a mid-stream failure is reported with an
// inline error marker instead.
func (h *QandAHandler) askStream(c echo.Context) error {
	var req askRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.WriteHeader(http.StatusOK)

	opts := llm.Options{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	err := h.LLM.ChatStream(c.Request().Context(), req.Question, opts, func(chunk string) error {
		if _, err := response.Write([]byte(chunk)); err != nil {
			return err
		}
		response.Flush()
		return nil
	})
	if err != nil {
		if _, werr := response.Write([]byte("\n[ERROR] " + err.Error())); werr == nil {
			response.Flush()
		}
	}
	return nil
}

func (h *QandAHandler) modelName(requested string) string {
	if requested != "" {
		return requested
	}
	return h.DefaultModel
}
