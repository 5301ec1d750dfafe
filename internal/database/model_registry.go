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
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel represents a table model used for automatic migration. Instance
// returns a struct pointer compatible with Bun, Priority controls creation
// order (lower values first, so referenced tables come before referencing
// ones), and ForeignKeys lists DDL clauses appended to CREATE TABLE.
type SQLModel interface {
	Instance() interface{}
	Priority() int
	ForeignKeys() []string
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func newModelRegistry() *modelRegistry {
	return &modelRegistry{models: make([]SQLModel, 0)}
}

func (r *modelRegistry) register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) sorted() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

type modelAdapter struct {
	instance    interface{}
	priority    int
	foreignKeys []string
}

// NewModelAdapter wraps a struct instance, priority, and foreign key clauses
// into an SQLModel.
func NewModelAdapter(instance interface{}, priority int, foreignKeys ...string) SQLModel {
	return &modelAdapter{
		instance:    instance,
		priority:    priority,
		foreignKeys: foreignKeys,
	}
}

func (a *modelAdapter) Instance() interface{} { return a.instance }

func (a *modelAdapter) Priority() int { return a.priority }

func (a *modelAdapter) ForeignKeys() []string { return a.foreignKeys }

// RegisterModel adds a model to the default registry.
func RegisterModel(model SQLModel) {
	defaultRegistry.register(model)
}

// RegisteredModels returns all registered models sorted by ascending
// priority.
func RegisteredModels() []SQLModel {
	return defaultRegistry.sorted()
}
