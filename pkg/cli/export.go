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

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database/sessiondb"
	"github.com/rs/zerolog/log"
)

// exportPageSize matches the history query cap, so a full page means
// there may be more rows.
const exportPageSize = 100

// handleExport streams session history to stdout, reading the database
// directly so it works whether or not the service is running.
func handleExport(table, format string) {
	db, err := sessiondb.OpenSessionDB(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("error opening session database")
		_, _ = fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	if err := db.MigrateUp(); err != nil {
		log.Error().Err(err).Msg("error migrating session database")
		_, _ = fmt.Fprintf(os.Stderr, "Error migrating session database: %v\n", err)
		_ = db.Close()
		os.Exit(1)
	}

	err = exportTo(os.Stdout, db, table, format)
	_ = db.Close()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func exportTo(w io.Writer, db *sessiondb.SessionDB, table, format string) error {
	switch format {
	case "csv":
		switch table {
		case "sessions":
			//nolint:wrapcheck // exporter errors already carry context
			return db.ExportSessionsCSV(w)
		case "power":
			//nolint:wrapcheck // exporter errors already carry context
			return db.ExportPowerEventsCSV(w)
		default:
			return fmt.Errorf("unknown table: %s (valid: sessions, power)", table)
		}
	case "json":
		return exportJSON(w, db, table)
	default:
		return fmt.Errorf("unknown format: %s (valid: csv, json)", format)
	}
}

func exportJSON(w io.Writer, db *sessiondb.SessionDB, table string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	switch table {
	case "sessions":
		all := make([]database.MeditationSession, 0)
		lastID := 0
		for {
			page, err := db.GetMeditationSessions(lastID, exportPageSize)
			if err != nil {
				return fmt.Errorf("error reading sessions: %w", err)
			}
			all = append(all, page...)
			if len(page) < exportPageSize {
				break
			}
			lastID = int(page[len(page)-1].DBID)
		}
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("error encoding sessions: %w", err)
		}
		return nil
	case "power":
		all := make([]database.PowerEvent, 0)
		lastID := 0
		for {
			page, err := db.GetPowerEvents(lastID, exportPageSize)
			if err != nil {
				return fmt.Errorf("error reading power events: %w", err)
			}
			all = append(all, page...)
			if len(page) < exportPageSize {
				break
			}
			lastID = int(page[len(page)-1].DBID)
		}
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("error encoding power events: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown table: %s (valid: sessions, power)", table)
	}
}
