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

package database

import (
	"database/sql"
	"time"
)

// Database is a portable handle for the open stores, passed through the
// service layer instead of concrete types to avoid circular imports.
type Database struct {
	Sessions SessionDBI
}

/*
 * Structs for SQL records
 */

// PowerEvent records a single backlight or screensaver transition.
//
// The deck has no RTC, so wall-clock timestamps taken before NTP sync are
// garbage. Every record carries the boot UUID and the monotonic offset since
// boot so the real time can be reconstructed once the clock is trustworthy.
type PowerEvent struct {
	CreatedAt      time.Time `json:"createdAt"`
	ID             string    `json:"id"`
	Event          string    `json:"event"`
	BootUUID       string    `json:"bootUuid"`
	ClockSource    string    `json:"clockSource"`
	DBID           int64     `json:"-"`
	MonotonicStart int64     `json:"monotonicStart"`
	ClockReliable  bool      `json:"clockReliable"`
}

// MeditationSession records one meditation playback run.
type MeditationSession struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	ID             string    `json:"id"`
	BootUUID       string    `json:"bootUuid"`
	ClockSource    string    `json:"clockSource"`
	DBID           int64     `json:"-"`
	MonotonicStart int64     `json:"monotonicStart"`
	RequestedSecs  int       `json:"requestedSecs"`
	PlayedSecs     int       `json:"playedSecs"`
	TrackCount     int       `json:"trackCount"`
	Completed      bool      `json:"completed"`
	ClockReliable  bool      `json:"clockReliable"`
}

// MeditationTrack caches the probe result for one audio file so the
// library scan doesn't have to decode every track on every boot.
type MeditationTrack struct {
	ModifiedAt time.Time `json:"modifiedAt"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	DBID       int64     `json:"-"`
	DurationMS int64     `json:"durationMs"`
}

// PowerEventValues are the accepted PowerEvent.Event strings.
const (
	PowerEventBlank   = "blank"
	PowerEventUnblank = "unblank"
)

/*
 * Interfaces for external deps
 */

type GenericDBI interface {
	Open() error
	UnsafeGetSQLDb() *sql.DB
	Truncate() error
	Allocate() error
	MigrateUp() error
	Vacuum() error
	Close() error
	GetDBPath() string
}

type SessionDBI interface {
	GenericDBI

	AddPowerEvent(event *PowerEvent) (int64, error)
	GetPowerEvents(lastID, limit int) ([]PowerEvent, error)
	CleanupPowerEvents(retentionDays int) (int64, error)

	AddMeditationSession(session *MeditationSession) (int64, error)
	UpdateMeditationSession(dbid int64, playedSecs int, completed bool) error
	GetMeditationSessions(lastID, limit int) ([]MeditationSession, error)

	UpsertMeditationTrack(track *MeditationTrack) error
	GetMeditationTrack(path string) (*MeditationTrack, error)
	GetAllMeditationTracks() ([]MeditationTrack, error)
	PruneMeditationTracks(keepPaths []string) (int64, error)

	HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error)
}
