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

// Package errs defines the HTTP error shape returned to API clients and
// constructors for the error taxonomy: validation, not-found, conflict,
// authentication, backend selection, and generic persistence failures.
package errs

import (
	"net/http"
	"strings"
)

// FieldError represents a field-level validation error.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is serialized directly to JSON as the response body.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError, so errors.Is matches on
// type rather than value.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(message string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusBadRequest),
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a 400 with per-field details.
func NewValidationError(message string, fields []FieldError) *HTTPError {
	return &HTTPError{
		Code:    "VALIDATION_FAILED",
		Message: message,
		Status:  http.StatusBadRequest,
		Errors:  fields,
	}
}

// NewConflictError creates a 400 with a conflict code for duplicate unique
// fields.
func NewConflictError(message string) *HTTPError {
	return &HTTPError{
		Code:    "ALREADY_EXISTS",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusNotFound),
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized error.
func NewUnauthorizedError(message string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusUnauthorized),
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewInternalServerError creates a 500 with the given detail message.
func NewInternalServerError(message string) *HTTPError {
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}
	return &HTTPError{
		Code:    statusCode(http.StatusInternalServerError),
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
