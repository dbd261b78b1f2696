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

package meditate

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// PlannedTrack is one entry in a session plan, with its start offset from
// the beginning of the session.
type PlannedTrack struct {
	Track  Track
	Offset time.Duration
}

// Plan is a resolved track sequence for one session. Padding is the
// silence between tracks; each planned offset already accounts for it.
type Plan struct {
	Tracks    []PlannedTrack
	Requested time.Duration
	Padding   time.Duration
}

// BuildPlan fills the requested duration with random tracks. The library
// is shuffled, then tracks are taken while they still fit in the time
// left; whatever remains is spread evenly between tracks as silence, so
// the session ends right on the requested duration.
func BuildPlan(tracks []Track, requested time.Duration, rng *rand.Rand) (Plan, error) {
	if requested <= 0 {
		return Plan{}, errors.New("session duration must be positive")
	}
	if len(tracks) == 0 {
		return Plan{}, errors.New("no meditation tracks available")
	}

	shuffled := make([]Track, len(tracks))
	copy(shuffled, tracks)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var selected []Track
	remaining := requested
	for _, track := range shuffled {
		if track.Duration <= 0 {
			continue
		}
		if track.Duration < remaining {
			selected = append(selected, track)
			remaining -= track.Duration
		}
	}
	if len(selected) == 0 {
		return Plan{}, fmt.Errorf("no track is shorter than the requested %s", requested)
	}

	padding := remaining / time.Duration(len(selected))

	planned := make([]PlannedTrack, 0, len(selected))
	var offset time.Duration
	for _, track := range selected {
		planned = append(planned, PlannedTrack{Track: track, Offset: offset})
		offset += track.Duration + padding
	}

	return Plan{Tracks: planned, Requested: requested, Padding: padding}, nil
}

// BuildProgramPlan resolves a program's track names against the library in
// order. Unknown names fail the plan rather than silently shortening the
// session.
func BuildProgramPlan(tracks []Track, program Program, defaultPadding time.Duration) (Plan, error) {
	if len(program.Tracks) == 0 {
		return Plan{}, fmt.Errorf("program %q has no tracks", program.Name)
	}

	padding := defaultPadding
	if program.PaddingSecs != nil {
		padding = time.Duration(*program.PaddingSecs) * time.Second
	}
	if padding < 0 {
		padding = 0
	}

	planned := make([]PlannedTrack, 0, len(program.Tracks))
	var offset time.Duration
	for _, name := range program.Tracks {
		track, ok := FindTrack(tracks, name)
		if !ok {
			return Plan{}, fmt.Errorf("program %q references unknown track %q", program.Name, name)
		}
		planned = append(planned, PlannedTrack{Track: track, Offset: offset})
		offset += track.Duration + padding
	}

	return Plan{Tracks: planned, Requested: offset, Padding: padding}, nil
}

// BuildTrackPlan plays a single named track with no padding.
func BuildTrackPlan(tracks []Track, name string) (Plan, error) {
	track, ok := FindTrack(tracks, name)
	if !ok {
		return Plan{}, fmt.Errorf("no meditation track matching %q", name)
	}
	return Plan{
		Tracks:    []PlannedTrack{{Track: track}},
		Requested: track.Duration,
	}, nil
}
