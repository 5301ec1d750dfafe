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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sookrat/studyapi/internal/api"
	"github.com/sookrat/studyapi/internal/config"
	"github.com/sookrat/studyapi/internal/database"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Logging)

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build database registry")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := registry.Open(openCtx, true); err != nil {
		logger.Fatal().Err(err).Msg("failed to open database backends")
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database backends")
		}
	}()

	server := api.NewServer(cfg, logger, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
		return
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// buildRegistry maps the flat config onto the two backend pools. A missing
// supabase URL falls back to the local URL so single-database deployments
// keep both labels working.
func buildRegistry(cfg *config.Config, logger zerolog.Logger) (*database.Registry, error) {
	local := database.DefaultConnectionConfig()
	local.URL = cfg.Database.LocalURL
	supabase := database.DefaultConnectionConfig()
	supabase.URL = cfg.Database.SupabaseURL
	if supabase.URL == "" {
		supabase.URL = cfg.Database.LocalURL
	}

	for _, conn := range []*database.ConnectionConfig{local, supabase} {
		if cfg.Database.MaxIdleConns > 0 {
			conn.MaxIdleConns = cfg.Database.MaxIdleConns
		}
		if cfg.Database.MaxOpenConns > 0 {
			conn.MaxOpenConns = cfg.Database.MaxOpenConns
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			conn.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
		}
		if cfg.Database.SlowQueryTime > 0 {
			conn.SlowQueryTime = cfg.Database.SlowQueryTime
		}
		conn.EnableQueryLog = cfg.Database.EnableQueryLog
	}

	return database.NewRegistry(local, supabase, cfg.Database.DefaultBackend, database.NewLogger(logger))
}
