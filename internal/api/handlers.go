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

// Package api holds the HTTP surface: echo server setup, request routing,
// middleware, and the resource handlers.
package api

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sookrat/studyapi/internal/database"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/repository"
)

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("invalid id")
	}
	return id, nil
}

// listOptions reads skip/limit/order_by query parameters. Absent or
// malformed values fall back to the repository defaults.
func listOptions(c echo.Context) repository.ListOptions {
	opts := repository.ListOptions{OrderBy: c.QueryParam("order_by")}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil && skip > 0 {
		opts.Skip = skip
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	return opts
}

// persistenceError maps repository failures onto the API error taxonomy.
// Classified constraint violations become 400s; anything else surfaces as a
// 400 with the driver message, matching the handler-boundary contract.
func persistenceError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case database.IsConflict(err):
		return errs.NewConflictError("record violates a unique constraint")
	case database.IsForeignKeyViolation(err):
		return errs.NewBadRequestError("referenced record does not exist")
	default:
		return errs.NewBadRequestError(err.Error())
	}
}
