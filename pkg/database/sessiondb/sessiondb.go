// Cyberdeck Core
// Copyright (c) 2025 The Cyberdeck Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Cyberdeck Core.
//
// Cyberdeck Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Cyberdeck Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.

// Package sessiondb stores power events and meditation sessions in a
// local sqlite database under the data directory.
package sessiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("SessionDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

type SessionDB struct {
	sql *sql.DB
	ctx context.Context
}

func OpenSessionDB(ctx context.Context) (*SessionDB, error) {
	db := &SessionDB{sql: nil, ctx: ctx}
	err := db.Open()
	return db, err
}

func (db *SessionDB) Open() error {
	exists := true
	dbPath := db.GetDBPath()
	_, err := os.Stat(dbPath)
	if err != nil {
		exists = false
		mkdirErr := os.MkdirAll(filepath.Dir(dbPath), 0o750)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory for database: %w", mkdirErr)
		}
	}
	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	if !exists {
		return db.Allocate()
	}
	return nil
}

func (db *SessionDB) GetDBPath() string {
	return filepath.Join(helpers.DataDir(), config.SessionDBFile)
}

func (db *SessionDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func (db *SessionDB) Truncate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(db.ctx, db.sql)
}

func (db *SessionDB) Allocate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAllocate(db.sql)
}

func (db *SessionDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

func (db *SessionDB) Vacuum() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(db.ctx, db.sql)
}

func (db *SessionDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting allows injection of a sql.DB instance for testing purposes.
// This method should only be used in tests to set up in-memory databases.
func (db *SessionDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) error {
	db.sql = sqlDB
	db.ctx = ctx

	// Initialize the database schema
	return db.Allocate()
}

/*
 * Power events
 */

// AddPowerEvent records a backlight transition and returns the DBID.
func (db *SessionDB) AddPowerEvent(event *database.PowerEvent) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddPowerEvent(db.ctx, db.sql, event)
}

// GetPowerEvents retrieves power events with token-based pagination.
func (db *SessionDB) GetPowerEvents(lastID, limit int) ([]database.PowerEvent, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetPowerEvents(db.ctx, db.sql, lastID, limit)
}

// CleanupPowerEvents removes power events older than the retention period.
func (db *SessionDB) CleanupPowerEvents(retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanupPowerEvents(db.ctx, db.sql, retentionDays)
}

/*
 * Meditation sessions
 */

// AddMeditationSession records the start of a meditation run and returns the DBID.
func (db *SessionDB) AddMeditationSession(session *database.MeditationSession) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddMeditationSession(db.ctx, db.sql, session)
}

// UpdateMeditationSession updates progress for a running or finished session.
func (db *SessionDB) UpdateMeditationSession(dbid int64, playedSecs int, completed bool) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpdateMeditationSession(db.ctx, db.sql, dbid, playedSecs, completed)
}

// GetMeditationSessions retrieves sessions with token-based pagination.
func (db *SessionDB) GetMeditationSessions(lastID, limit int) ([]database.MeditationSession, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetMeditationSessions(db.ctx, db.sql, lastID, limit)
}

/*
 * Meditation track cache
 */

// UpsertMeditationTrack stores or refreshes the probe result for a track.
func (db *SessionDB) UpsertMeditationTrack(track *database.MeditationTrack) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpsertMeditationTrack(db.ctx, db.sql, track)
}

// GetMeditationTrack fetches the cached probe result for a path, if any.
func (db *SessionDB) GetMeditationTrack(path string) (*database.MeditationTrack, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetMeditationTrack(db.ctx, db.sql, path)
}

// GetAllMeditationTracks returns every cached track.
func (db *SessionDB) GetAllMeditationTracks() ([]database.MeditationTrack, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetAllMeditationTracks(db.ctx, db.sql)
}

// PruneMeditationTracks deletes cache rows whose path is no longer in the
// library and returns the number removed.
func (db *SessionDB) PruneMeditationTracks(keepPaths []string) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlPruneMeditationTracks(db.ctx, db.sql, keepPaths)
}

/*
 * Clock healing
 */

// HealTimestamps corrects timestamps for records created before NTP sync.
// When the clock becomes reliable, this reconstructs correct timestamps
// using: TrueTime = TrueBootTime + MonotonicStart
func (db *SessionDB) HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlHealTimestamps(db.ctx, db.sql, bootUUID, trueBootTime)
}
