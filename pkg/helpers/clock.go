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

package helpers

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinReliableYear is the earliest year considered valid for the system clock.
	// Cyberdeck Core was released in 2025 - any earlier date indicates an unset clock.
	MinReliableYear = 2025
)

// ClockSource values indicate how a timestamp was determined
const (
	// ClockSourceSystem indicates the timestamp came from a system clock that appeared reliable.
	// This could be NTP or manually set - we don't distinguish at record creation time.
	ClockSourceSystem = "system"

	// ClockSourceEpoch indicates the timestamp came from an unreliable clock.
	// The Pi has no RTC chip, so the clock sits at epoch until NTP syncs.
	ClockSourceEpoch = "epoch"

	// ClockSourceHealed indicates the timestamp was mathematically reconstructed.
	// Original timestamp was unreliable, but was later corrected using:
	// TrueTimestamp = TrueBootTime + MonotonicOffset
	ClockSourceHealed = "healed"
)

// IsClockReliable checks if the system clock appears to be set correctly.
// Returns false if the clock is clearly wrong (e.g., year < 2025).
func IsClockReliable(t time.Time) bool {
	return t.Year() >= MinReliableYear
}

// ClockSource returns the clock source label for a timestamp taken now.
func ClockSource(t time.Time) string {
	if IsClockReliable(t) {
		return ClockSourceSystem
	}
	return ClockSourceEpoch
}

// BootUUID returns the kernel's per-boot identifier so records written by
// different processes in the same boot share one UUID and can be healed
// together. Falls back to a random UUID when the file is unreadable.
func BootUUID() string {
	data, err := os.ReadFile("/proc/sys/kernel/random/boot_id")
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
