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

// Package config loads server settings from an optional YAML file and then
// applies environment variable overrides. A .env file in the working
// directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	LocalURL        string        `yaml:"local_url"`
	SupabaseURL     string        `yaml:"supabase_url"`
	DefaultBackend  string        `yaml:"default_backend"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	EnableQueryLog  bool          `yaml:"enable_query_log"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time"`
}

type AuthConfig struct {
	SecretKey string        `yaml:"secret_key"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in defaults used when neither file nor
// environment supplies a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			LocalURL:       "sqlite://file:studyapi.db?cache=shared",
			DefaultBackend: "local",
			MaxIdleConns:   10,
			MaxOpenConns:   100,
			SlowQueryTime:  200 * time.Millisecond,
		},
		Auth: AuthConfig{
			TokenTTL: 30 * time.Minute,
		},
		LLM: LLMConfig{
			Model:   "command-r-plus",
			BaseURL: "https://api.cohere.com",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing),
// then overrides from the environment, then validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Address, "SERVER_ADDRESS")
	setString(&c.Database.LocalURL, "DATABASE_URL")
	setString(&c.Database.SupabaseURL, "SUPABASE_DB_URL")
	setString(&c.Database.DefaultBackend, "DEFAULT_DB")
	setBool(&c.Database.EnableQueryLog, "DB_QUERY_LOG")
	setString(&c.Auth.SecretKey, "SECRET_KEY")
	setDuration(&c.Auth.TokenTTL, "ACCESS_TOKEN_TTL")
	setString(&c.LLM.APIKey, "COHERE_API_KEY")
	setString(&c.LLM.Model, "COHERE_MODEL")
	setString(&c.LLM.BaseURL, "COHERE_BASE_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")
}

func (c *Config) validate() error {
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth secret key is required; set SECRET_KEY or auth.secret_key")
	}
	if c.Database.LocalURL == "" {
		return fmt.Errorf("local database URL is required; set DATABASE_URL or database.local_url")
	}
	c.Database.DefaultBackend = strings.ToLower(strings.TrimSpace(c.Database.DefaultBackend))
	switch c.Database.DefaultBackend {
	case "local":
	case "supabase":
		if c.Database.SupabaseURL == "" {
			return fmt.Errorf("default backend is supabase but SUPABASE_DB_URL is not set")
		}
	default:
		return fmt.Errorf("unknown default backend %q", c.Database.DefaultBackend)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
