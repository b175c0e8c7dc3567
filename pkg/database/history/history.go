// GamerCred Companion
// Copyright (c) 2026 The GamerCred Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GamerCred Companion.
//
// GamerCred Companion is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamerCred Companion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamerCred Companion.  If not, see <http://www.gnu.org/licenses/>.

// Package history keeps a local record of every session logged to the
// backend, so the UI can show recent play without a round trip and users
// can export their data.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/heyclandestine/gamercred/pkg/database"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const DefaultLimit = 50

var ErrNotOpen = errors.New("history database is not open")

type Entry struct {
	StartTime time.Time
	EndTime   time.Time
	Game      string
	ID        int64
	Hours     float64
}

type DB struct {
	sql *sql.DB
}

// Open creates or opens the sqlite file at path and migrates it.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path+database.SQLiteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	if err := database.MigrateUp(sqlDB, migrationFiles, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run history migrations: %w", err)
	}

	return &DB{sql: sqlDB}, nil
}

// New wraps an already prepared connection, for tests.
func New(sqlDB *sql.DB) *DB {
	return &DB{sql: sqlDB}
}

func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}

//nolint:gocritic // value copy is fine for a small struct
func (db *DB) Add(ctx context.Context, e Entry) (int64, error) {
	if db == nil || db.sql == nil {
		return 0, ErrNotOpen
	}
	return sqlAddSession(ctx, db.sql, e)
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if db == nil || db.sql == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return sqlRecentSessions(ctx, db.sql, limit)
}

// All returns every entry, oldest first.
func (db *DB) All(ctx context.Context) ([]Entry, error) {
	if db == nil || db.sql == nil {
		return nil, ErrNotOpen
	}
	return sqlAllSessions(ctx, db.sql)
}

//nolint:gocritic // value copy is fine for a small struct
func sqlAddSession(ctx context.Context, db *sql.DB, e Entry) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO Sessions (Game, StartTime, EndTime, Hours)
		VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare add session statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("history: failed to close sql statement")
		}
	}()

	res, err := stmt.ExecContext(ctx, e.Game, e.StartTime.Unix(), e.EndTime.Unix(), e.Hours)
	if err != nil {
		return 0, fmt.Errorf("failed to add session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return id, nil
}

func sqlRecentSessions(ctx context.Context, db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DBID, Game, StartTime, EndTime, Hours
		FROM Sessions
		ORDER BY StartTime DESC, DBID DESC
		LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	return scanEntries(rows)
}

func sqlAllSessions(ctx context.Context, db *sql.DB) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DBID, Game, StartTime, EndTime, Hours
		FROM Sessions
		ORDER BY StartTime ASC, DBID ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("history: failed to close rows")
		}
	}()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var start, end int64
		if err := rows.Scan(&e.ID, &e.Game, &start, &end, &e.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		e.StartTime = time.Unix(start, 0).UTC()
		e.EndTime = time.Unix(end, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return entries, nil
}
