// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the database at the given path and migrates the schema.
// Pass "file::memory:?cache=shared" for an in-memory database.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// SQLite allows one writer at a time; a single pooled connection turns
	// lock contention into queueing instead of SQLITE_BUSY errors.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&identityModel{}, &taskModel{}, &messageModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
