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

	"github.com/sookrat/studyapi/internal/database"
)

type healthResponse struct {
	Status   string                            `json:"status"`
	Time     time.Time                         `json:"time"`
	Backends map[string]*database.HealthStatus `json:"backends"`
}

// HealthHandler pings every registered backend. The response is 503 when
// the default backend is unhealthy; a down secondary only degrades status.
type HealthHandler struct {
	Registry *database.Registry
}

func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.health)
}

func (h *HealthHandler) health(c echo.Context) error {
	backends := h.Registry.HealthCheck(c.Request().Context())

	status := "ok"
	code := http.StatusOK
	for label, check := range backends {
		if check.Healthy {
			continue
		}
		status = "degraded"
		if label == h.Registry.DefaultBackend() {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	return c.JSON(code, healthResponse{
		Status:   status,
		Time:     time.Now().UTC(),
		Backends: backends,
	})
}
