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
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sookrat/studyapi/internal/auth"
	"github.com/sookrat/studyapi/internal/database"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/repository"
)

// DatabaseSelector resolves the ?db= query parameter against the backend
// registry and binds the selected connection to the request context. An
// unrecognized label fails closed with a 400 before any handler runs.
func DatabaseSelector(registry *database.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			label := c.QueryParam("db")
			db, err := registry.Select(label)
			if err != nil {
				if errors.Is(err, database.ErrUnknownBackend) {
					return errs.NewBadRequestError(
						"invalid database " + strconv.Quote(label) + ", expected \"local\" or \"supabase\"")
				}
				return err
			}
			if label == "" {
				label = registry.DefaultBackend()
			}
			c.Set(contextKeyDB, db)
			c.Set(contextKeyBackend, strings.ToLower(strings.TrimSpace(label)))
			return next(c)
		}
	}
}

// RequireAuth authenticates the request from its Authorization header. The
// token subject is re-resolved to a user row in the backend selected for
// this request, so a user known only to one backend cannot act on the
// other.
func RequireAuth(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return unauthorized(c)
			}
			username, err := issuer.ParseToken(token)
			if err != nil {
				return unauthorized(c)
			}
			users := repository.NewUserRepository(selectedDB(c))
			user, err := users.GetByUsername(c.Request().Context(), username)
			if err != nil {
				return err
			}
			if user == nil || !user.IsActive {
				return unauthorized(c)
			}
			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return errs.NewUnauthorizedError("Could not validate credentials")
}
