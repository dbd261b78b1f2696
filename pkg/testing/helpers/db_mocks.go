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

// Package helpers provides testing utilities for database operations.
//
// This package includes a mock implementation of the session database
// interface and helper functions for setting up test databases with
// sqlmock. It enables testing database operations without a real SQLite
// database.
//
// Example usage:
//
//	func TestSessionHistory(t *testing.T) {
//		db := helpers.NewMockSessionDB()
//		db.On("GetMeditationSessions", 0, 25).Return([]database.MeditationSession{}, nil)
//
//		err := MyFunction(db)
//
//		require.NoError(t, err)
//		db.AssertExpectations(t)
//	}
package helpers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockSessionDB is a mock implementation of the SessionDBI interface
// using testify/mock.
type MockSessionDB struct {
	mock.Mock
}

// NewMockSessionDB creates a new mock session database.
func NewMockSessionDB() *MockSessionDB {
	return &MockSessionDB{}
}

func (m *MockSessionDB) Open() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB open failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) UnsafeGetSQLDb() *sql.DB {
	args := m.Called()
	if db, ok := args.Get(0).(*sql.DB); ok {
		return db
	}
	return nil
}

func (m *MockSessionDB) Truncate() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB truncate failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) Allocate() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB allocate failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) MigrateUp() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB migrate failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) Vacuum() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB vacuum failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB close failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) GetDBPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSessionDB) AddPowerEvent(event *database.PowerEvent) (int64, error) {
	args := m.Called(event)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock SessionDB add power event failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // test mock
}

func (m *MockSessionDB) GetPowerEvents(lastID, limit int) ([]database.PowerEvent, error) {
	args := m.Called(lastID, limit)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock SessionDB get power events failed: %w", err)
	}
	if events, ok := args.Get(0).([]database.PowerEvent); ok {
		return events, nil
	}
	return nil, nil
}

func (m *MockSessionDB) CleanupPowerEvents(retentionDays int) (int64, error) {
	args := m.Called(retentionDays)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock SessionDB cleanup power events failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // test mock
}

func (m *MockSessionDB) AddMeditationSession(session *database.MeditationSession) (int64, error) {
	args := m.Called(session)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock SessionDB add meditation session failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // test mock
}

func (m *MockSessionDB) UpdateMeditationSession(dbid int64, playedSecs int, completed bool) error {
	args := m.Called(dbid, playedSecs, completed)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB update meditation session failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) GetMeditationSessions(lastID, limit int) ([]database.MeditationSession, error) {
	args := m.Called(lastID, limit)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock SessionDB get meditation sessions failed: %w", err)
	}
	if sessions, ok := args.Get(0).([]database.MeditationSession); ok {
		return sessions, nil
	}
	return nil, nil
}

func (m *MockSessionDB) UpsertMeditationTrack(track *database.MeditationTrack) error {
	args := m.Called(track)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock SessionDB upsert meditation track failed: %w", err)
	}
	return nil
}

func (m *MockSessionDB) GetMeditationTrack(path string) (*database.MeditationTrack, error) {
	args := m.Called(path)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock SessionDB get meditation track failed: %w", err)
	}
	if track, ok := args.Get(0).(*database.MeditationTrack); ok {
		return track, nil
	}
	return nil, nil
}

func (m *MockSessionDB) GetAllMeditationTracks() ([]database.MeditationTrack, error) {
	args := m.Called()
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock SessionDB get all meditation tracks failed: %w", err)
	}
	if tracks, ok := args.Get(0).([]database.MeditationTrack); ok {
		return tracks, nil
	}
	return nil, nil
}

func (m *MockSessionDB) PruneMeditationTracks(keepPaths []string) (int64, error) {
	args := m.Called(keepPaths)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock SessionDB prune meditation tracks failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // test mock
}

func (m *MockSessionDB) HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error) {
	args := m.Called(bootUUID, trueBootTime)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock SessionDB heal timestamps failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // test mock
}
