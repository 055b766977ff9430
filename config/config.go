// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment leaves a value unset.
const (
	DefaultAddr      = ":5000"
	DefaultDBPath    = "taskhub.db"
	DefaultUploadDir = "uploads"
	DefaultTokenTTL  = 30 * 24 * time.Hour
)

// Config holds the runtime configuration of the service.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string

	// DBPath is the sqlite database path.
	DBPath string

	// JWTSecret signs and verifies bearer credentials. Required.
	JWTSecret string

	// UploadDir is the directory holding uploaded task files.
	UploadDir string

	// TokenTTL is the lifetime of minted credentials.
	TokenTTL time.Duration

	// StrictTransitions rejects backward task status moves when set. Off by
	// default to match the permissive status contract.
	StrictTransitions bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Addr:              getString("TASKHUB_ADDR", DefaultAddr),
		DBPath:            getString("TASKHUB_DB_PATH", DefaultDBPath),
		JWTSecret:         os.Getenv("TASKHUB_JWT_SECRET"),
		UploadDir:         getString("TASKHUB_UPLOAD_DIR", DefaultUploadDir),
		TokenTTL:          getDuration("TASKHUB_TOKEN_TTL", DefaultTokenTTL),
		StrictTransitions: getBool("TASKHUB_STRICT_TRANSITIONS", false),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("TASKHUB_JWT_SECRET is required")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
