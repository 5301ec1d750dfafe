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

	"github.com/sookrat/studyapi/internal/auth"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/repository"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginHandler exchanges form-encoded credentials for a bearer token.
type LoginHandler struct {
	Issuer *auth.TokenIssuer
}

func (h *LoginHandler) Register(e *echo.Echo) {
	e.POST("/login", h.login)
}

func (h *LoginHandler) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return errs.NewBadRequestError("username and password are required")
	}

	users := repository.NewUserRepository(selectedDB(c))
	user, err := users.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		return persistenceError(err)
	}
	if user == nil {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return errs.NewUnauthorizedError("Incorrect username or password")
	}

	token, err := h.Issuer.CreateAccessToken(user.Username)
	if err != nil {
		return errs.NewInternalServerError("could not issue access token")
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
