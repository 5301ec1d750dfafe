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

// Package validation binds request payloads and runs struct tag validation,
// translating failures into the API error shape.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sookrat/studyapi/internal/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate binds the request body into dst and validates it against
// its struct tags. The returned error is always an *errs.HTTPError.
func BindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewBadRequestError("malformed request body")
	}
	return Struct(dst)
}

// Struct validates dst against its validator tags.
func Struct(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs.NewBadRequestError("invalid request body")
	}
	fields := make([]errs.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, errs.FieldError{
			Field: strings.ToLower(fe.Field()),
			Error: describe(fe),
		})
	}
	return errs.NewValidationError("request validation failed", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
