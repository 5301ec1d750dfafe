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
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sookrat/studyapi/internal/auth"
	"github.com/sookrat/studyapi/internal/config"
	"github.com/sookrat/studyapi/internal/database"
	"github.com/sookrat/studyapi/internal/errs"
	"github.com/sookrat/studyapi/internal/llm"
)

// Server wires configuration, the backend registry, and the LLM client into
// an echo application.
type Server struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *database.Registry
	echo     *echo.Echo
}

func NewServer(cfg *config.Config, logger zerolog.Logger, registry *database.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		echo:     echo.New(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(s.requestLogger())
	e.Use(DatabaseSelector(s.registry))

	issuer := auth.NewTokenIssuer(s.cfg.Auth.SecretKey, s.cfg.Auth.TokenTTL)
	requireAuth := RequireAuth(issuer)

	(&HealthHandler{Registry: s.registry}).Register(e)
	(&LoginHandler{Issuer: issuer}).Register(e)

	(&StudentHandler{}).Register(e.Group("/students", requireAuth))
	(&ItemHandler{}).Register(e.Group("/items"))
	(&UserHandler{}).Register(e.Group("/register"))

	client := llm.NewClient(s.cfg.LLM.APIKey, s.cfg.LLM.Model, s.cfg.LLM.BaseURL)
	qanda := &QandAHandler{LLM: client, DefaultModel: s.cfg.LLM.Model}
	qanda.Register(e.Group("/qanda", requireAuth))
}

// handleError renders every error as the JSON taxonomy shape. Errors that
// are not already classified surface as 500s.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			message, _ := echoErr.Message.(string)
			if message == "" {
				message = http.StatusText(echoErr.Code)
			}
			httpErr = &errs.HTTPError{
				Code:    http.StatusText(echoErr.Code),
				Message: message,
				Status:  echoErr.Code,
			}
		} else {
			s.logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			httpErr = errs.NewInternalServerError("")
		}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(httpErr.Status)
	} else {
		writeErr = c.JSON(httpErr.Status, httpErr)
	}
	if writeErr != nil {
		s.logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			event := s.logger.Info()
			if v.Status >= http.StatusInternalServerError {
				event = s.logger.Error()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("backend", selectedBackend(c)).
				Err(v.Error).
				Msg("request")
			return nil
		},
	})
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.cfg.Server.Address).Msg("http server listening")
	err := s.echo.Start(s.cfg.Server.Address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router, used by handler tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
