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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/rs/zerolog/log"
)

func sqlAddMeditationSession(ctx context.Context, db *sql.DB, session *database.MeditationSession) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO MeditationSessions(
			ID, BootUUID, MonotonicStart, RequestedSecs, PlayedSecs, TrackCount,
			Completed, ClockReliable, ClockSource, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare meditation session insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx,
		session.ID,
		session.BootUUID,
		session.MonotonicStart,
		session.RequestedSecs,
		session.PlayedSecs,
		session.TrackCount,
		session.Completed,
		session.ClockReliable,
		session.ClockSource,
		session.CreatedAt.Unix(),
		session.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute meditation session insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func sqlUpdateMeditationSession(ctx context.Context, db *sql.DB, dbid int64, playedSecs int, completed bool) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE MeditationSessions
		SET PlayedSecs = ?, Completed = ?, UpdatedAt = ?
		WHERE DBID = ?;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare meditation session update statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	_, err = stmt.ExecContext(ctx, playedSecs, completed, time.Now().Unix(), dbid)
	if err != nil {
		return fmt.Errorf("failed to execute meditation session update: %w", err)
	}

	return nil
}

func sqlGetMeditationSessions(ctx context.Context, db *sql.DB, lastID, limit int) ([]database.MeditationSession, error) {
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}

	list := make([]database.MeditationSession, 0, limit)

	// Token-based pagination instead of offset
	if lastID == 0 {
		lastID = 2147483646 // Max int32 value for "get latest"
	}

	q, err := db.PrepareContext(ctx, `
		SELECT
			DBID, ID, BootUUID, MonotonicStart, RequestedSecs, PlayedSecs, TrackCount,
			Completed, ClockReliable, ClockSource, CreatedAt, UpdatedAt
		FROM MeditationSessions
		WHERE DBID < ?
		ORDER BY DBID DESC
		LIMIT ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare meditation session query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, lastID, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query meditation sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var session database.MeditationSession
		var createdAtUnix, updatedAtUnix int64

		err = rows.Scan(
			&session.DBID,
			&session.ID,
			&session.BootUUID,
			&session.MonotonicStart,
			&session.RequestedSecs,
			&session.PlayedSecs,
			&session.TrackCount,
			&session.Completed,
			&session.ClockReliable,
			&session.ClockSource,
			&createdAtUnix,
			&updatedAtUnix,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan meditation session row: %w", err)
		}

		session.CreatedAt = time.Unix(createdAtUnix, 0)
		session.UpdatedAt = time.Unix(updatedAtUnix, 0)
		list = append(list, session)
	}

	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating meditation session rows: %w", err)
	}

	return list, nil
}

func sqlUpsertMeditationTrack(ctx context.Context, db *sql.DB, track *database.MeditationTrack) error {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO MeditationTracks (Path, Name, Slug, DurationMS, ModifiedAt)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(Path) DO UPDATE SET
			Name = excluded.Name,
			Slug = excluded.Slug,
			DurationMS = excluded.DurationMS,
			ModifiedAt = excluded.ModifiedAt;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare meditation track upsert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	_, err = stmt.ExecContext(ctx,
		track.Path,
		track.Name,
		track.Slug,
		track.DurationMS,
		track.ModifiedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to execute meditation track upsert: %w", err)
	}
	return nil
}

func sqlGetMeditationTrack(ctx context.Context, db *sql.DB, path string) (*database.MeditationTrack, error) {
	row := db.QueryRowContext(ctx, `
		SELECT DBID, Path, Name, Slug, DurationMS, ModifiedAt
		FROM MeditationTracks WHERE Path = ?;
	`, path)

	var track database.MeditationTrack
	var modifiedAtUnix int64
	err := row.Scan(
		&track.DBID,
		&track.Path,
		&track.Name,
		&track.Slug,
		&track.DurationMS,
		&modifiedAtUnix,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // cache miss is not an error
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan meditation track row: %w", err)
	}

	track.ModifiedAt = time.Unix(modifiedAtUnix, 0)
	return &track, nil
}

func sqlGetAllMeditationTracks(ctx context.Context, db *sql.DB) ([]database.MeditationTrack, error) {
	list := make([]database.MeditationTrack, 0)

	q, err := db.PrepareContext(ctx, `
		SELECT DBID, Path, Name, Slug, DurationMS, ModifiedAt
		FROM MeditationTracks
		ORDER BY Name;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare get all meditation tracks statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return list, fmt.Errorf("failed to execute get all meditation tracks query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var track database.MeditationTrack
		var modifiedAtUnix int64
		scanErr := rows.Scan(
			&track.DBID,
			&track.Path,
			&track.Name,
			&track.Slug,
			&track.DurationMS,
			&modifiedAtUnix,
		)
		if scanErr != nil {
			return list, fmt.Errorf("failed to scan meditation track row: %w", scanErr)
		}
		track.ModifiedAt = time.Unix(modifiedAtUnix, 0)
		list = append(list, track)
	}
	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating meditation track rows: %w", err)
	}
	return list, nil
}

func sqlPruneMeditationTracks(ctx context.Context, db *sql.DB, keepPaths []string) (int64, error) {
	if len(keepPaths) == 0 {
		//goland:noinspection SqlWithoutWhere
		result, err := db.ExecContext(ctx, `DELETE FROM MeditationTracks;`)
		if err != nil {
			return 0, fmt.Errorf("failed to clear meditation tracks: %w", err)
		}
		rows, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", rowsErr)
		}
		return rows, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keepPaths)), ",")
	args := make([]any, 0, len(keepPaths))
	for _, p := range keepPaths {
		args = append(args, p)
	}

	//nolint:gosec // placeholders are generated, values are bound
	query := `DELETE FROM MeditationTracks WHERE Path NOT IN (` + placeholders + `);`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune meditation tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
