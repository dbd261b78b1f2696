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
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/audio"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/slugs"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
	"github.com/charlievieth/fastwalk"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// minTrackSimilarity is the Jaro-Winkler floor for fuzzy track lookups.
const minTrackSimilarity = 0.7

// Track is one playable file from the meditation library.
type Track struct {
	Path     string        `json:"path"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Duration time.Duration `json:"duration"`
}

// Prober reports the play length of an audio file. audio.Player satisfies
// it; tests substitute a fake so scans don't decode real audio.
type Prober interface {
	Probe(path string) (time.Duration, error)
}

type walkEntry struct {
	modTime time.Time
	path    string
}

// ScanLibrary walks dir for playable audio files and returns them sorted by
// name. Durations come from the sessiondb track cache when the file is
// unchanged, otherwise the file is decoded and the cache refreshed. Decoding
// a large library takes a while on deck hardware, so cache misses are probed
// in parallel. A nil db disables caching, a missing dir yields an empty
// library.
func ScanLibrary(ctx context.Context, dir string, db database.SessionDBI, prober Prober) ([]Track, error) {
	var (
		mu      syncutil.Mutex
		entries []walkEntry
	)

	conf := fastwalk.Config{Follow: true}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable library entry")
			return nil
		}
		if d.IsDir() || !audio.SupportedFile(path) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			log.Debug().Err(infoErr).Str("path", path).Msg("skipping library entry without file info")
			return nil
		}
		mu.Lock()
		entries = append(entries, walkEntry{path: path, modTime: info.ModTime()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan meditation library: %w", err)
	}

	tracks := make([]Track, 0, len(entries))
	toProbe := make([]walkEntry, 0, len(entries))

	for _, entry := range entries {
		if db != nil {
			cached, cacheErr := db.GetMeditationTrack(entry.path)
			if cacheErr != nil {
				log.Warn().Err(cacheErr).Str("path", entry.path).Msg("failed to read track cache")
			} else if cached != nil && cached.ModifiedAt.Unix() == entry.modTime.Unix() {
				tracks = append(tracks, Track{
					Path:     entry.path,
					Name:     cached.Name,
					Slug:     cached.Slug,
					Duration: time.Duration(cached.DurationMS) * time.Millisecond,
				})
				continue
			}
		}
		toProbe = append(toProbe, entry)
	}

	probed, err := probeEntries(ctx, toProbe, prober)
	if err != nil {
		return nil, err
	}

	for i, track := range probed {
		if track == nil {
			continue
		}
		tracks = append(tracks, *track)
		if db == nil {
			continue
		}
		upsertErr := db.UpsertMeditationTrack(&database.MeditationTrack{
			Path:       track.Path,
			Name:       track.Name,
			Slug:       track.Slug,
			DurationMS: track.Duration.Milliseconds(),
			ModifiedAt: toProbe[i].modTime,
		})
		if upsertErr != nil {
			log.Warn().Err(upsertErr).Str("path", track.Path).Msg("failed to cache track duration")
		}
	}

	if db != nil {
		keep := make([]string, 0, len(entries))
		for _, entry := range entries {
			keep = append(keep, entry.path)
		}
		pruned, pruneErr := db.PruneMeditationTracks(keep)
		if pruneErr != nil {
			log.Warn().Err(pruneErr).Msg("failed to prune track cache")
		} else if pruned > 0 {
			log.Debug().Int64("removed", pruned).Msg("pruned stale track cache rows")
		}
	}

	sort.Slice(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i].Name) < strings.ToLower(tracks[j].Name)
	})

	log.Info().Int("tracks", len(tracks)).Str("dir", dir).Msg("scanned meditation library")
	return tracks, nil
}

// probeEntries decodes entries in parallel and returns tracks aligned with
// the input. Files that fail to decode are logged and left nil.
func probeEntries(ctx context.Context, entries []walkEntry, prober Prober) ([]*Track, error) {
	results := make([]*Track, len(entries))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, entry := range entries {
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}

			duration, err := prober.Probe(entry.path)
			if err != nil {
				log.Warn().Err(err).Str("path", entry.path).Msg("failed to probe meditation track, skipping")
				return nil
			}

			name := trackName(entry.path)
			results[i] = &Track{
				Path:     entry.path,
				Name:     name,
				Slug:     slugs.SlugifyName(name),
				Duration: duration,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to probe meditation tracks: %w", err)
	}
	return results, nil
}

func trackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindTrack resolves a user-supplied name to a library track. An exact slug
// match wins, otherwise the closest Jaro-Winkler match above the similarity
// floor is used so "ocean waves" still finds "03 - Ocean Waves.mp3".
func FindTrack(tracks []Track, query string) (Track, bool) {
	slug := slugs.SlugifyName(query)
	if slug == "" {
		return Track{}, false
	}

	for _, track := range tracks {
		if track.Slug == slug {
			return track, true
		}
	}

	best := -1
	var bestScore float32
	for i, track := range tracks {
		score := edlib.JaroWinklerSimilarity(slug, track.Slug)
		if score >= minTrackSimilarity && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return Track{}, false
	}

	log.Debug().
		Str("query", query).
		Str("match", tracks[best].Name).
		Float32("similarity", bestScore).
		Msg("fuzzy matched meditation track")
	return tracks[best], true
}
