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

package sessiondb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	testsqlmock "github.com/CyberdeckProject/cyberdeck-core/pkg/testing/sqlmock"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlAddPowerEvent_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	event := &database.PowerEvent{
		ID:             "test-uuid",
		Event:          database.PowerEventBlank,
		BootUUID:       "test-boot-uuid",
		MonotonicStart: 123,
		ClockReliable:  true,
		ClockSource:    helpers.ClockSourceSystem,
		CreatedAt:      now,
	}

	mock.ExpectPrepare(`INSERT INTO PowerEvents.*VALUES`).
		ExpectExec().
		WithArgs(
			event.ID, event.Event, event.BootUUID, event.MonotonicStart,
			event.ClockReliable, event.ClockSource, event.CreatedAt.Unix(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	dbid, err := sqlAddPowerEvent(context.Background(), db, event)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dbid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlAddPowerEvent_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	event := &database.PowerEvent{
		ID:             "test-uuid",
		Event:          database.PowerEventUnblank,
		BootUUID:       "test-boot-uuid",
		MonotonicStart: 123,
		ClockReliable:  true,
		ClockSource:    helpers.ClockSourceSystem,
		CreatedAt:      now,
	}

	mock.ExpectPrepare(`INSERT INTO PowerEvents.*VALUES`).
		ExpectExec().
		WithArgs(
			event.ID, event.Event, event.BootUUID, event.MonotonicStart,
			event.ClockReliable, event.ClockSource, event.CreatedAt.Unix(),
		).
		WillReturnError(sqlmock.ErrCancelled)

	_, err = sqlAddPowerEvent(context.Background(), db, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute power event insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetPowerEvents_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Unix(1736000000, 0)
	expectedEvents := []database.PowerEvent{
		{
			DBID:           2,
			ID:             "uuid-2",
			Event:          database.PowerEventUnblank,
			BootUUID:       "boot-1",
			MonotonicStart: 200,
			ClockReliable:  true,
			ClockSource:    helpers.ClockSourceSystem,
			CreatedAt:      now,
		},
		{
			DBID:           1,
			ID:             "uuid-1",
			Event:          database.PowerEventBlank,
			BootUUID:       "boot-1",
			MonotonicStart: 100,
			ClockReliable:  true,
			ClockSource:    helpers.ClockSourceSystem,
			CreatedAt:      time.Unix(1735999900, 0),
		},
	}

	rows := sqlmock.NewRows([]string{
		"DBID", "ID", "Event", "BootUUID", "MonotonicStart",
		"ClockReliable", "ClockSource", "CreatedAt",
	})
	for _, event := range expectedEvents {
		rows.AddRow(
			event.DBID, event.ID, event.Event, event.BootUUID, event.MonotonicStart,
			event.ClockReliable, event.ClockSource, event.CreatedAt.Unix(),
		)
	}

	mock.ExpectPrepare(`SELECT.*FROM PowerEvents.*WHERE DBID.*ORDER BY.*LIMIT`).
		ExpectQuery().
		WithArgs(100, 25).
		WillReturnRows(rows)

	result, err := sqlGetPowerEvents(context.Background(), db, 100, 25)
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, expectedEvents[0].DBID, result[0].DBID)
	assert.Equal(t, expectedEvents[0].Event, result[0].Event)
	assert.Equal(t, expectedEvents[1].DBID, result[1].DBID)
	assert.Equal(t, expectedEvents[1].Event, result[1].Event)
	assert.Equal(t, expectedEvents[0].CreatedAt.Unix(), result[0].CreatedAt.Unix())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetPowerEvents_NoRows(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{
		"DBID", "ID", "Event", "BootUUID", "MonotonicStart",
		"ClockReliable", "ClockSource", "CreatedAt",
	})

	mock.ExpectPrepare(`SELECT.*FROM PowerEvents.*WHERE DBID.*ORDER BY.*LIMIT`).
		ExpectQuery().
		WithArgs(2147483646, 25). // MaxInt32-1: sentinel value when lastID=0 to get latest records
		WillReturnRows(rows)

	result, err := sqlGetPowerEvents(context.Background(), db, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetPowerEvents_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`SELECT.*FROM PowerEvents.*WHERE DBID.*ORDER BY.*LIMIT`).
		ExpectQuery().
		WithArgs(100, 25).
		WillReturnError(sqlmock.ErrCancelled)

	result, err := sqlGetPowerEvents(context.Background(), db, 100, 25)
	require.Error(t, err)
	assert.Empty(t, result) // Should be empty slice, not nil
	assert.Contains(t, err.Error(), "failed to query power events")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCleanupPowerEvents_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	retentionDays := 30
	rowsDeleted := int64(5)

	mock.ExpectPrepare(`DELETE FROM PowerEvents WHERE CreatedAt`).
		ExpectExec().
		WithArgs(sqlmock.AnyArg()). // Time cutoff will be calculated dynamically
		WillReturnResult(sqlmock.NewResult(0, rowsDeleted))

	// Expect VACUUM after delete
	mock.ExpectExec(`vacuum`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rowsAffected, err := sqlCleanupPowerEvents(context.Background(), db, retentionDays)
	require.NoError(t, err)
	assert.Equal(t, rowsDeleted, rowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCleanupPowerEvents_NoRowsToDelete(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`DELETE FROM PowerEvents WHERE CreatedAt`).
		ExpectExec().
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// No VACUUM expected when no rows deleted

	rowsAffected, err := sqlCleanupPowerEvents(context.Background(), db, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCleanupPowerEvents_VacuumError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rowsDeleted := int64(3)

	mock.ExpectPrepare(`DELETE FROM PowerEvents WHERE CreatedAt`).
		ExpectExec().
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, rowsDeleted))

	mock.ExpectExec(`vacuum`).
		WillReturnError(sqlmock.ErrCancelled)

	rowsAffected, err := sqlCleanupPowerEvents(context.Background(), db, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup succeeded but vacuum failed")
	assert.Equal(t, rowsDeleted, rowsAffected) // Still returns rows deleted even if vacuum fails
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Meditation Session Tests

func TestSqlAddMeditationSession_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	session := &database.MeditationSession{
		ID:             "session-uuid",
		BootUUID:       "boot-uuid",
		MonotonicStart: 500,
		RequestedSecs:  600,
		PlayedSecs:     0,
		TrackCount:     3,
		Completed:      false,
		ClockReliable:  true,
		ClockSource:    helpers.ClockSourceSystem,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectPrepare(`INSERT INTO MeditationSessions.*VALUES`).
		ExpectExec().
		WithArgs(
			session.ID, session.BootUUID, session.MonotonicStart,
			session.RequestedSecs, session.PlayedSecs, session.TrackCount,
			session.Completed, session.ClockReliable, session.ClockSource,
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		).
		WillReturnResult(sqlmock.NewResult(7, 1))

	dbid, err := sqlAddMeditationSession(context.Background(), db, session)
	require.NoError(t, err)
	assert.Equal(t, int64(7), dbid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlAddMeditationSession_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	session := &database.MeditationSession{
		ID:            "session-uuid",
		BootUUID:      "boot-uuid",
		RequestedSecs: 600,
		ClockReliable: true,
		ClockSource:   helpers.ClockSourceSystem,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectPrepare(`INSERT INTO MeditationSessions.*VALUES`).
		ExpectExec().
		WithArgs(
			session.ID, session.BootUUID, session.MonotonicStart,
			session.RequestedSecs, session.PlayedSecs, session.TrackCount,
			session.Completed, session.ClockReliable, session.ClockSource,
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		).
		WillReturnError(sqlmock.ErrCancelled)

	_, err = sqlAddMeditationSession(context.Background(), db, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute meditation session insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlUpdateMeditationSession_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`UPDATE MeditationSessions.*SET PlayedSecs.*WHERE DBID`).
		ExpectExec().
		WithArgs(300, true, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = sqlUpdateMeditationSession(context.Background(), db, 7, 300, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlUpdateMeditationSession_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`UPDATE MeditationSessions.*SET PlayedSecs.*WHERE DBID`).
		ExpectExec().
		WithArgs(300, false, sqlmock.AnyArg(), int64(999)).
		WillReturnError(sqlmock.ErrCancelled)

	err = sqlUpdateMeditationSession(context.Background(), db, 999, 300, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute meditation session update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Meditation Track Cache Tests

func TestSqlUpsertMeditationTrack_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	track := &database.MeditationTrack{
		Path:       "/audio/meditations/rain.mp3",
		Name:       "Rain",
		Slug:       "rain",
		DurationMS: 180000,
		ModifiedAt: time.Unix(1736000000, 0),
	}

	mock.ExpectPrepare(`INSERT INTO MeditationTracks.*ON CONFLICT.*UPDATE`).
		ExpectExec().
		WithArgs(track.Path, track.Name, track.Slug, track.DurationMS, track.ModifiedAt.Unix()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = sqlUpsertMeditationTrack(context.Background(), db, track)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetMeditationTrack_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	path := "/audio/meditations/rain.mp3"
	modifiedAt := time.Unix(1736000000, 0)

	rows := sqlmock.NewRows([]string{"DBID", "Path", "Name", "Slug", "DurationMS", "ModifiedAt"}).
		AddRow(int64(1), path, "Rain", "rain", int64(180000), modifiedAt.Unix())

	mock.ExpectQuery(`SELECT.*FROM MeditationTracks WHERE Path`).
		WithArgs(path).
		WillReturnRows(rows)

	track, err := sqlGetMeditationTrack(context.Background(), db, path)
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, "Rain", track.Name)
	assert.Equal(t, "rain", track.Slug)
	assert.Equal(t, int64(180000), track.DurationMS)
	assert.Equal(t, modifiedAt.Unix(), track.ModifiedAt.Unix())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetMeditationTrack_NotFound(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	path := "/audio/meditations/missing.mp3"

	mock.ExpectQuery(`SELECT.*FROM MeditationTracks WHERE Path`).
		WithArgs(path).
		WillReturnError(sql.ErrNoRows)

	track, err := sqlGetMeditationTrack(context.Background(), db, path)
	require.NoError(t, err)
	assert.Nil(t, track) // Cache miss returns nil, not an error
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlGetAllMeditationTracks_Empty(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"DBID", "Path", "Name", "Slug", "DurationMS", "ModifiedAt"})

	mock.ExpectPrepare(`SELECT.*FROM MeditationTracks.*ORDER BY Name`).
		ExpectQuery().
		WillReturnRows(rows)

	result, err := sqlGetAllMeditationTracks(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlPruneMeditationTracks_KeepsListed(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	keep := []string{"/audio/a.mp3", "/audio/b.mp3"}

	mock.ExpectExec(`DELETE FROM MeditationTracks WHERE Path NOT IN`).
		WithArgs(keep[0], keep[1]).
		WillReturnResult(sqlmock.NewResult(0, 3))

	pruned, err := sqlPruneMeditationTracks(context.Background(), db, keep)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlPruneMeditationTracks_EmptyKeepListClearsAll(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`DELETE FROM MeditationTracks`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	pruned, err := sqlPruneMeditationTracks(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Database Management Function Tests

func TestSqlTruncate_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`delete from PowerEvents.*delete from MeditationSessions.*delete from MeditationTracks.*vacuum`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = sqlTruncate(context.Background(), db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlTruncate_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`delete from PowerEvents.*delete from MeditationSessions.*delete from MeditationTracks.*vacuum`).
		WillReturnError(sqlmock.ErrCancelled)

	err = sqlTruncate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to truncate database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlVacuum_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`vacuum`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = sqlVacuum(context.Background(), db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlVacuum_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`vacuum`).
		WillReturnError(sqlmock.ErrCancelled)

	err = sqlVacuum(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to vacuum database")
	assert.NoError(t, mock.ExpectationsWereMet())
}
