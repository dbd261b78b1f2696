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
	"fmt"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/rs/zerolog/log"
)

func sqlAddPowerEvent(ctx context.Context, db *sql.DB, event *database.PowerEvent) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO PowerEvents(
			ID, Event, BootUUID, MonotonicStart, ClockReliable, ClockSource, CreatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare power event insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx,
		event.ID,
		event.Event,
		event.BootUUID,
		event.MonotonicStart,
		event.ClockReliable,
		event.ClockSource,
		event.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute power event insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func sqlGetPowerEvents(ctx context.Context, db *sql.DB, lastID, limit int) ([]database.PowerEvent, error) {
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}

	list := make([]database.PowerEvent, 0, limit)

	// Token-based pagination instead of offset
	if lastID == 0 {
		lastID = 2147483646 // Max int32 value for "get latest"
	}

	q, err := db.PrepareContext(ctx, `
		SELECT
			DBID, ID, Event, BootUUID, MonotonicStart, ClockReliable, ClockSource, CreatedAt
		FROM PowerEvents
		WHERE DBID < ?
		ORDER BY DBID DESC
		LIMIT ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare power event query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, lastID, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query power events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var event database.PowerEvent
		var createdAtUnix int64

		err = rows.Scan(
			&event.DBID,
			&event.ID,
			&event.Event,
			&event.BootUUID,
			&event.MonotonicStart,
			&event.ClockReliable,
			&event.ClockSource,
			&createdAtUnix,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan power event row: %w", err)
		}

		event.CreatedAt = time.Unix(createdAtUnix, 0)
		list = append(list, event)
	}

	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating power event rows: %w", err)
	}

	return list, nil
}

func sqlCleanupPowerEvents(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).Unix()

	stmt, err := db.PrepareContext(ctx, `DELETE FROM PowerEvents WHERE CreatedAt < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare power event cleanup statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to execute power event cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Vacuum to reclaim disk space after cleanup
	if rowsAffected > 0 {
		if err := sqlVacuum(ctx, db); err != nil {
			return rowsAffected, fmt.Errorf("cleanup succeeded but vacuum failed: %w", err)
		}
	}

	return rowsAffected, nil
}

func sqlHealTimestamps(ctx context.Context, db *sql.DB, bootUUID string, trueBootTime time.Time) (int64, error) {
	trueBootUnix := trueBootTime.Unix()

	// Heal PowerEvents timestamps
	eventStmt, err := db.PrepareContext(ctx, `
		UPDATE PowerEvents
		SET CreatedAt = ? + MonotonicStart,
		    ClockReliable = 1,
		    ClockSource = 'healed'
		WHERE BootUUID = ? AND ClockReliable = 0;
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare power event heal statement: %w", err)
	}
	defer func() {
		if closeErr := eventStmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	eventResult, err := eventStmt.ExecContext(ctx, trueBootUnix, bootUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to heal power event timestamps: %w", err)
	}

	eventRows, _ := eventResult.RowsAffected()

	// Heal MeditationSessions timestamps
	sessionStmt, err := db.PrepareContext(ctx, `
		UPDATE MeditationSessions
		SET CreatedAt = ? + MonotonicStart,
		    ClockReliable = 1,
		    ClockSource = 'healed',
		    UpdatedAt = unixepoch()
		WHERE BootUUID = ? AND ClockReliable = 0;
	`)
	if err != nil {
		return eventRows, fmt.Errorf("failed to prepare meditation session heal statement: %w", err)
	}
	defer func() {
		if closeErr := sessionStmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	sessionResult, err := sessionStmt.ExecContext(ctx, trueBootUnix, bootUUID)
	if err != nil {
		return eventRows, fmt.Errorf("failed to heal meditation session timestamps: %w", err)
	}

	sessionRows, _ := sessionResult.RowsAffected()
	totalRows := eventRows + sessionRows

	if totalRows > 0 {
		log.Info().
			Int64("power_events_healed", eventRows).
			Int64("sessions_healed", sessionRows).
			Str("boot_uuid", bootUUID).
			Msg("healed timestamps for records created with unreliable clock")
	}

	return totalRows, nil
}
