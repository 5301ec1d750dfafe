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
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/sookrat/studyapi/internal/models"
)

const (
	contextKeyDB      = "db"
	contextKeyBackend = "db_backend"
	contextKeyUser    = "current_user"
)

// selectedDB returns the *bun.DB the database selector middleware bound to
// this request.
func selectedDB(c echo.Context) *bun.DB {
	db, _ := c.Get(contextKeyDB).(*bun.DB)
	return db
}

func selectedBackend(c echo.Context) string {
	label, _ := c.Get(contextKeyBackend).(string)
	return label
}

// currentUser returns the authenticated user, or nil on unauthenticated
// routes.
func currentUser(c echo.Context) *models.User {
	user, _ := c.Get(contextKeyUser).(*models.User)
	return user
}
