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

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Backend labels. Exactly these two are recognized; anything else fails
// closed.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

// ErrUnknownBackend is returned by Select for labels outside the closed set.
var ErrUnknownBackend = errors.New("unknown database backend")

// Registry holds one connection manager per named backend. Pools live for
// the process lifetime; callers borrow a *bun.DB per request via Select.
type Registry struct {
	managers       map[string]Manager
	defaultBackend string
	logger         Logger
}

// NewRegistry builds the two-backend registry. defaultBackend must be one of
// the recognized labels ("local" when empty).
func NewRegistry(local, supabase *ConnectionConfig, defaultBackend string, logger Logger) (*Registry, error) {
	if local == nil || supabase == nil {
		return nil, fmt.Errorf("both backend configurations are required")
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	if defaultBackend == "" {
		defaultBackend = BackendLocal
	}
	defaultBackend = normalizeLabel(defaultBackend)
	if defaultBackend != BackendLocal && defaultBackend != BackendSupabase {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, defaultBackend)
	}

	localManager := NewManager(local)
	localManager.SetLogger(logger)
	supabaseManager := NewManager(supabase)
	supabaseManager.SetLogger(logger)

	return &Registry{
		managers: map[string]Manager{
			BackendLocal:    localManager,
			BackendSupabase: supabaseManager,
		},
		defaultBackend: defaultBackend,
		logger:         logger,
	}, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Open connects every backend and optionally creates the schema on each.
func (r *Registry) Open(ctx context.Context, runMigrations bool) error {
	for name, m := range r.managers {
		if err := m.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect %q backend: %w", name, err)
		}
		if runMigrations {
			if err := m.RunMigrations(ctx); err != nil {
				return fmt.Errorf("failed to migrate %q backend: %w", name, err)
			}
		}
	}
	r.logger.Info("Database registry initialized", "default", r.defaultBackend)
	return nil
}

// Select resolves a backend label to its Bun DB. The empty label maps to the
// default backend; unrecognized labels return ErrUnknownBackend.
func (r *Registry) Select(label string) (*bun.DB, error) {
	m, err := r.Manager(label)
	if err != nil {
		return nil, err
	}
	db := m.GetDB()
	if db == nil {
		return nil, fmt.Errorf("backend %q is not connected", normalizeLabel(label))
	}
	return db, nil
}

// Manager resolves a backend label to its connection manager.
func (r *Registry) Manager(label string) (Manager, error) {
	name := normalizeLabel(label)
	if name == "" {
		name = r.defaultBackend
	}
	m, ok := r.managers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return m, nil
}

// DefaultBackend returns the label used when no explicit choice is supplied.
func (r *Registry) DefaultBackend() string {
	return r.defaultBackend
}

// Default returns the Bun DB of the default backend.
func (r *Registry) Default() *bun.DB {
	db, _ := r.Select(r.defaultBackend)
	return db
}

// Backends lists the recognized labels.
func (r *Registry) Backends() []string {
	return []string{BackendLocal, BackendSupabase}
}

// HealthCheck pings every backend and returns per-backend status.
func (r *Registry) HealthCheck(ctx context.Context) map[string]*HealthStatus {
	statuses := make(map[string]*HealthStatus, len(r.managers))
	for name, m := range r.managers {
		statuses[name] = m.HealthCheck(ctx)
	}
	return statuses
}

// Close disconnects all backends, returning the first error encountered.
func (r *Registry) Close() error {
	var firstErr error
	for name, m := range r.managers {
		if err := m.Disconnect(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %q backend: %w", name, err)
		}
	}
	return firstErr
}
