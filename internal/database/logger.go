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
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging contract the connection managers depend on.
// Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type zerologAdapter struct {
	log zerolog.Logger
}

// NewLogger wraps a zerolog.Logger into the package Logger contract.
func NewLogger(log zerolog.Logger) Logger {
	return &zerologAdapter{log: log}
}

// DefaultLogger returns a console logger for use when no application logger
// has been provided.
func DefaultLogger() Logger {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
		Timestamp().
		Str("component", "database").
		Logger()
	return &zerologAdapter{log: log}
}

func (z *zerologAdapter) Debug(msg string, fields ...interface{}) {
	z.event(z.log.Debug(), fields).Msg(msg)
}

func (z *zerologAdapter) Info(msg string, fields ...interface{}) {
	z.event(z.log.Info(), fields).Msg(msg)
}

func (z *zerologAdapter) Warn(msg string, fields ...interface{}) {
	z.event(z.log.Warn(), fields).Msg(msg)
}

func (z *zerologAdapter) Error(msg string, fields ...interface{}) {
	z.event(z.log.Error(), fields).Msg(msg)
}

func (z *zerologAdapter) event(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}
