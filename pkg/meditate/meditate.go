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

// Package meditate runs meditation sessions: it fills a requested length
// with random tracks from the library (or a named track or program), plays
// them with silence in between, pulses the backlight so the screen doesn't
// burn a hole in the dark, and rings an alarm when time is up. Sessions
// are recorded to the session database.
package meditate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/audio"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/banner"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrSessionRunning is returned by Run when a session is already active.
var ErrSessionRunning = errors.New("a meditation session is already running")

// DefaultDuration is used when no session length is requested.
const DefaultDuration = time.Hour

// rainTickInterval paces the heartbeat animation.
const rainTickInterval = 500 * time.Millisecond

// Options selects what a session plays. Track and Program override
// Duration; Track wins when both are set.
type Options struct {
	Track    string
	Program  string
	Duration time.Duration
}

// Status is a snapshot of the running session.
type Status struct {
	StartedAt  time.Time     `json:"startedAt"`
	TrackName  string        `json:"trackName,omitempty"`
	Requested  time.Duration `json:"requested"`
	Played     time.Duration `json:"played"`
	TrackIndex int           `json:"trackIndex"`
	TrackCount int           `json:"trackCount"`
	Running    bool          `json:"running"`
	Alarming   bool          `json:"alarming"`
}

// Runner plays meditation sessions. One session runs at a time; Run blocks
// until the session is cancelled or the alarm is dismissed.
type Runner struct {
	cfg       *config.Instance
	db        database.SessionDBI
	player    audio.Player
	backlight *backlight.Backlight
	clock     clockwork.Clock
	rng       *rand.Rand
	fs        afero.Fs
	screen    tcell.Screen
	bootUUID  string

	mu     syncutil.RWMutex
	status Status
}

// NewRunner creates a session runner. db and bl may be nil, which disables
// session records and backlight pulsing. A nil clock uses the real one.
func NewRunner(
	cfg *config.Instance,
	db database.SessionDBI,
	player audio.Player,
	bl *backlight.Backlight,
	clock clockwork.Clock,
) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		cfg:       cfg,
		db:        db,
		player:    player,
		backlight: bl,
		clock:     clock,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		fs:        afero.NewOsFs(),
		bootUUID:  helpers.BootUUID(),
	}
}

// SetScreen attaches a terminal for the heartbeat animation. Without one
// the session runs headless (audio and backlight only).
func (r *Runner) SetScreen(screen tcell.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen = screen
}

// Status returns a snapshot of the running session.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status := r.status
	if status.Running {
		status.Played = r.clock.Since(status.StartedAt)
	}
	return status
}

// Run plays one session to completion: scan the library, build a plan,
// play it with backlight pulsing and the heartbeat display, then ring the
// alarm until ctx is cancelled. Returns ctx's error when cancelled early.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	dataDir := helpers.DataDir()

	tracks, err := ScanLibrary(ctx, r.cfg.MeditationsDir(dataDir), r.db, r.player)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no meditation tracks in %s", r.cfg.MeditationsDir(dataDir))
	}

	plan, err := r.buildPlan(tracks, opts, dataDir)
	if err != nil {
		return err
	}

	start, err := r.markStarted(plan)
	if err != nil {
		return err
	}
	defer r.markStopped()

	dbid := r.recordStart(plan)

	var rain *Rain
	r.mu.RLock()
	screen := r.screen
	r.mu.RUnlock()
	if screen != nil {
		rain = NewRain(screen, r.rng)
		rain.SetPlan(plan)
	}

	log.Info().
		Int("tracks", len(plan.Tracks)).
		Dur("requested", plan.Requested).
		Dur("padding", plan.Padding).
		Msg("starting meditation session")

	if err := r.playPlan(ctx, plan, rain, dbid, start); err != nil {
		r.recordProgress(dbid, start, false)
		return err
	}

	r.recordProgress(dbid, start, true)
	log.Info().Msg("meditation session complete, ringing alarm")

	r.alarm(ctx, screen, dataDir)
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildPlan resolves Options into a track sequence.
func (r *Runner) buildPlan(tracks []Track, opts Options, dataDir string) (Plan, error) {
	switch {
	case opts.Track != "":
		return BuildTrackPlan(tracks, opts.Track)
	case opts.Program != "":
		programs, err := LoadPrograms(r.fs, r.cfg.ProgramsFile(dataDir))
		if err != nil {
			return Plan{}, err
		}
		program, ok := FindProgram(programs, opts.Program)
		if !ok {
			return Plan{}, fmt.Errorf("no meditation program matching %q", opts.Program)
		}
		padding := time.Duration(r.cfg.PaddingSeconds()) * time.Second
		return BuildProgramPlan(tracks, program, padding)
	default:
		duration := opts.Duration
		if duration <= 0 {
			duration = DefaultDuration
		}
		return BuildPlan(tracks, duration, r.rng)
	}
}

// markStarted flips the runner to running, refusing a second session.
func (r *Runner) markStarted(plan Plan) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return time.Time{}, ErrSessionRunning
	}
	start := r.clock.Now()
	r.status = Status{
		Running:    true,
		StartedAt:  start,
		Requested:  plan.Requested,
		TrackIndex: -1,
		TrackCount: len(plan.Tracks),
	}
	return start, nil
}

func (r *Runner) markStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	played := r.clock.Since(r.status.StartedAt)
	r.status = Status{Played: played, Requested: r.status.Requested}
}

func (r *Runner) setTrack(index int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.TrackIndex = index
	r.status.TrackName = name
}

func (r *Runner) setAlarming() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Alarming = true
	r.status.TrackName = ""
}

// playPlan plays every planned track in order with padding in between.
func (r *Runner) playPlan(ctx context.Context, plan Plan, rain *Rain, dbid int64, start time.Time) error {
	for i, planned := range plan.Tracks {
		r.setTrack(i, planned.Track.Name)
		if rain != nil {
			rain.SetState(i, false)
		}
		log.Debug().Str("track", planned.Track.Name).Dur("offset", planned.Offset).Msg("playing session track")

		if err := r.playWithPulse(ctx, planned.Track.Path, rain); err != nil {
			return err
		}
		r.recordProgress(dbid, start, false)

		if rain != nil {
			rain.SetState(i, true)
		}
		if plan.Padding > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(plan.Padding):
			}
		}
	}
	return nil
}

// playWithPulse plays one track while cycling the backlight and animating
// the heartbeat. The backlight is always relit when the track ends.
func (r *Runner) playWithPulse(ctx context.Context, path string, rain *Rain) error {
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	playErr := make(chan error, 1)
	go func() {
		playErr <- r.player.Play(playCtx, path)
	}()

	onSecs, offSecs := r.cfg.PulseSeconds()
	onDur := time.Duration(onSecs) * time.Second
	offDur := time.Duration(offSecs) * time.Second

	r.setBacklight(true)
	defer r.setBacklight(true)

	var tick <-chan time.Time
	if rain != nil {
		ticker := r.clock.NewTicker(rainTickInterval)
		defer ticker.Stop()
		tick = ticker.Chan()
	}

	lightOn := true
	phase := r.clock.NewTimer(onDur)
	defer phase.Stop()

	for {
		select {
		case err := <-playErr:
			return err
		case <-phase.Chan():
			if lightOn {
				r.setBacklight(false)
				lightOn = false
				phase.Reset(offDur)
			} else {
				r.setBacklight(true)
				lightOn = true
				if rain != nil {
					rain.Relocate()
				}
				phase.Reset(onDur)
			}
		case <-tick:
			rain.Tick()
		}
	}
}

func (r *Runner) setBacklight(on bool) {
	if r.backlight == nil {
		return
	}
	if err := r.backlight.SetPower(on); err != nil {
		log.Debug().Err(err).Bool("on", on).Msg("failed to set backlight power")
	}
}

// alarm rings until ctx is cancelled. The wake screen stays up even if the
// alarm file won't play, so a session never ends silently on its own.
func (r *Runner) alarm(ctx context.Context, screen tcell.Screen, dataDir string) {
	if ctx.Err() != nil {
		return
	}

	r.setAlarming()
	r.setBacklight(true)
	if screen != nil {
		drawWake(screen)
	}

	alarmPath := r.cfg.AlarmSound(dataDir)
	err := r.player.PlayLoop(ctx, alarmPath)
	if err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Str("path", alarmPath).Msg("failed to play session alarm")
		<-ctx.Done()
	}
}

// drawWake paints the alarm art centered on the screen in bold green.
func drawWake(screen tcell.Screen) {
	screen.Clear()
	lines := banner.WakeLines()
	width, height := screen.Size()

	top := (height - len(lines)) / 2
	if top < 0 {
		top = 0
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)

	for li, line := range lines {
		y := top + li
		if y >= height {
			break
		}
		runes := []rune(line)
		left := (width - len(runes)) / 2
		if left < 0 {
			left = 0
		}
		for x, ch := range runes {
			if left+x >= width {
				break
			}
			screen.SetContent(left+x, y, ch, nil, style)
		}
	}
	screen.Show()
}

// recordStart writes the session record, returning its DBID or zero when
// records are disabled or the write fails.
func (r *Runner) recordStart(plan Plan) int64 {
	if r.db == nil {
		return 0
	}

	var monotonicStart int64
	if up, err := uptime.Get(); err == nil {
		monotonicStart = int64(up.Seconds())
	} else {
		log.Warn().Err(err).Msg("failed to read system uptime")
	}

	now := r.clock.Now()
	session := &database.MeditationSession{
		ID:             uuid.NewString(),
		BootUUID:       r.bootUUID,
		MonotonicStart: monotonicStart,
		RequestedSecs:  int(plan.Requested.Seconds()),
		TrackCount:     len(plan.Tracks),
		ClockReliable:  helpers.IsClockReliable(now),
		ClockSource:    helpers.ClockSource(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	dbid, err := r.db.AddMeditationSession(session)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record meditation session")
		return 0
	}
	return dbid
}

func (r *Runner) recordProgress(dbid int64, start time.Time, completed bool) {
	if r.db == nil || dbid == 0 {
		return
	}
	playedSecs := int(r.clock.Since(start).Seconds())
	if err := r.db.UpdateMeditationSession(dbid, playedSecs, completed); err != nil {
		log.Warn().Err(err).Msg("failed to update meditation session")
	}
}
