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
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// csvSessionRow is the flattened CSV shape for one meditation session.
type csvSessionRow struct {
	StartedAt     string `csv:"started_at"`
	ID            string `csv:"id"`
	BootUUID      string `csv:"boot_uuid"`
	ClockSource   string `csv:"clock_source"`
	RequestedSecs int    `csv:"requested_secs"`
	PlayedSecs    int    `csv:"played_secs"`
	TrackCount    int    `csv:"track_count"`
	Completed     bool   `csv:"completed"`
}

// csvPowerEventRow is the flattened CSV shape for one power event.
type csvPowerEventRow struct {
	CreatedAt   string `csv:"created_at"`
	ID          string `csv:"id"`
	Event       string `csv:"event"`
	BootUUID    string `csv:"boot_uuid"`
	ClockSource string `csv:"clock_source"`
}

// ExportSessionsCSV writes the full meditation session history as CSV.
// Rows come out newest first, matching the paginated query order.
func (db *SessionDB) ExportSessionsCSV(w io.Writer) error {
	if db.sql == nil {
		return ErrNullSQL
	}

	rows := make([]csvSessionRow, 0)
	lastID := 0
	for {
		page, err := db.GetMeditationSessions(lastID, 100)
		if err != nil {
			return fmt.Errorf("failed to read sessions for export: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			s := &page[i]
			rows = append(rows, csvSessionRow{
				StartedAt:     s.CreatedAt.Format(time.RFC3339),
				ID:            s.ID,
				BootUUID:      s.BootUUID,
				ClockSource:   s.ClockSource,
				RequestedSecs: s.RequestedSecs,
				PlayedSecs:    s.PlayedSecs,
				TrackCount:    s.TrackCount,
				Completed:     s.Completed,
			})
		}
		lastID = int(page[len(page)-1].DBID)
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write session csv: %w", err)
	}
	return nil
}

// ExportPowerEventsCSV writes the full power event history as CSV.
func (db *SessionDB) ExportPowerEventsCSV(w io.Writer) error {
	if db.sql == nil {
		return ErrNullSQL
	}

	rows := make([]csvPowerEventRow, 0)
	lastID := 0
	for {
		page, err := db.GetPowerEvents(lastID, 100)
		if err != nil {
			return fmt.Errorf("failed to read power events for export: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			e := &page[i]
			rows = append(rows, csvPowerEventRow{
				CreatedAt:   e.CreatedAt.Format(time.RFC3339),
				ID:          e.ID,
				Event:       e.Event,
				BootUUID:    e.BootUUID,
				ClockSource: e.ClockSource,
			})
		}
		lastID = int(page[len(page)-1].DBID)
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write power event csv: %w", err)
	}
	return nil
}
