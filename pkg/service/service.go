/*
Cyberdeck Core
Copyright (c) 2026 The Cyberdeck Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Cyberdeck Core.

Cyberdeck Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Cyberdeck Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Cyberdeck Core.  If not, see <http://www.gnu.org/licenses/>.
*/

package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/notifications"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/audio"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/backlight"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/database/sessiondb"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/deck"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/linuxinput"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/meditate"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/power"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/broker"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/discovery"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/publishers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/service/state"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog/log"
)

// powerEventRetentionDays is how long blank/unblank records are kept before
// startup cleanup removes them.
const powerEventRetentionDays = 90

// libraryRescanDebounce delays a rescan after a filesystem event so a track
// still being copied in doesn't trigger one scan per write.
const libraryRescanDebounce = 2 * time.Second

func setupEnvironment(cfg *config.Instance) error {
	if _, ok := helpers.HasUserDir(); ok {
		log.Info().Msg("using 'user' directory for storage")
	}

	log.Info().Msg("creating data directories")
	if err := helpers.EnsureDirectories(); err != nil {
		return err
	}

	meditationsDir := cfg.MeditationsDir(helpers.DataDir())
	if err := os.MkdirAll(meditationsDir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", meditationsDir, err)
	}

	return nil
}

func makeDatabase(ctx context.Context) (*sessiondb.SessionDB, error) {
	log.Debug().Msg("opening session database")
	db, err := sessiondb.OpenSessionDB(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	log.Debug().Msg("running session database migrations")
	if err := db.MigrateUp(); err != nil {
		return nil, fmt.Errorf("error migrating session database: %w", err)
	}

	return db, nil
}

// cleanupOnStartup trims power events past retention. Meditation sessions are
// kept forever; an unclean shutdown just leaves the last one uncompleted,
// which is accurate.
func cleanupOnStartup(db database.SessionDBI) {
	log.Info().Msgf("cleaning up power events older than %d days", powerEventRetentionDays)
	rowsDeleted, err := db.CleanupPowerEvents(powerEventRetentionDays)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("error cleaning up power events")
	case rowsDeleted > 0:
		log.Info().Msgf("deleted %d old power events", rowsDeleted)
	default:
		log.Debug().Msg("no old power events to clean up")
	}
}

func Start(
	cfg *config.Instance,
) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	// Shared with the CLI via the kernel boot id, so records written by
	// either process before NTP sync heal together.
	bootUUID := helpers.BootUUID()
	log.Info().Msgf("boot session UUID: %s", bootUUID)

	st, ns := state.NewState(bootUUID) // global state, notification queue (source)

	// Broadcast the notification queue to all consumers.
	notifBroker := broker.NewBroker(st.GetContext(), ns)
	notifBroker.Start()

	err = setupEnvironment(cfg)
	if err != nil {
		log.Error().Err(err).Msg("error setting up environment")
		return nil, nil, err
	}

	log.Info().Msg("opening session database")
	db, err := makeDatabase(st.GetContext())
	if err != nil {
		log.Error().Err(err).Msg("error opening session database")
		return nil, nil, err
	}

	cleanupOnStartup(db)

	deckDev := deck.New(cfg)
	bl := backlight.Default(cfg.BacklightPath())
	player := audio.NewMalgoPlayer()
	runner := meditate.NewRunner(cfg, db, player, bl, nil)

	log.Info().Msg("scanning meditation library")
	go indexLibrary(st, cfg, db, player)

	log.Info().Msg("starting mDNS discovery service")
	discoveryService := discovery.New(cfg)
	if discoveryErr := discoveryService.Start(); discoveryErr != nil {
		log.Error().Err(discoveryErr).Msg("mDNS discovery failed to start (continuing without discovery)")
	}

	log.Info().Msg("starting API service")
	apiNotifications, _ := notifBroker.Subscribe(100)
	err = api.Start(cfg, st, deckDev, bl, runner, db, apiNotifications)
	if err != nil {
		log.Error().Err(err).Msg("error starting API service")
		return nil, nil, err
	}

	log.Info().Msg("starting publishers")
	activePublishers := startPublishers(notifBroker, cfg)

	log.Info().Msg("starting screensaver watcher")
	powerWatcher, closeWakeKey := startPowerWatcher(cfg, st, db, bl)

	log.Info().Msg("starting meditation library watcher")
	libraryWatcher, watchErr := watchLibrary(st, cfg, db, player)
	if watchErr != nil {
		log.Warn().Err(watchErr).Msg("library watcher failed to start (continuing without it)")
	}

	log.Info().Msg("starting clock reliability monitor")
	go monitorClockAndHealTimestamps(st.GetContext(), db, bootUUID)

	log.Info().Msg("service fully initialized")

	doneCh := make(chan struct{})
	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service context cancelled, running cleanup")

		discoveryService.Stop()
		for _, publisher := range activePublishers {
			publisher.Stop()
		}
		if powerWatcher != nil {
			powerWatcher.Stop()
		}
		closeWakeKey()
		if libraryWatcher != nil {
			if closeErr := libraryWatcher.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing library watcher")
			}
		}
		notifBroker.Stop()
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing session database")
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		st.StopService()
		<-doneCh
		return nil
	}
	done = doneCh
	return stop, done, nil
}

// startPublishers gives each configured MQTT publisher its own broker
// subscription, so one stalled broker connection can't hold up the others.
// Publishers that fail to connect release their subscription immediately.
func startPublishers(
	notifBroker *broker.Broker,
	cfg *config.Instance,
) []*publishers.MQTTPublisher {
	activePublishers := make([]*publishers.MQTTPublisher, 0)

	for _, mqttCfg := range cfg.GetMQTTPublishers() {
		// nil means enabled by default
		if mqttCfg.Enabled != nil && !*mqttCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", mqttCfg.Broker, mqttCfg.Topic)

		notifChan, subID := notifBroker.Subscribe(100)
		publisher := publishers.NewMQTTPublisher(mqttCfg.Broker, mqttCfg.Topic, mqttCfg.Filter)
		if err := publisher.Start(notifChan); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			notifBroker.Unsubscribe(subID)
			continue
		}

		activePublishers = append(activePublishers, publisher)
	}

	if len(activePublishers) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(activePublishers))
	}

	return activePublishers
}

// startPowerWatcher wires the screensaver detector to the backlight, the
// power event log and the notification stream. Returns a nil watcher when
// screensaver watching is disabled. The second return closes the uinput
// wake keyboard and is always safe to call.
func startPowerWatcher(
	cfg *config.Instance,
	st *state.State,
	db database.SessionDBI,
	bl *backlight.Backlight,
) (*power.Watcher, func()) {
	closeWakeKey := func() {}

	if !cfg.ScreensaverWatchEnabled() {
		log.Info().Msg("screensaver watch disabled in config")
		return nil, closeWakeKey
	}

	var wakeKey func()
	if cfg.WakeKeyEnabled() {
		kbd, err := linuxinput.NewKeyboard(linuxinput.DefaultTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("wake key unavailable, continuing without it")
		} else {
			wakeKey = func() {
				if pressErr := kbd.Press(linuxinput.KeyWake); pressErr != nil {
					log.Warn().Err(pressErr).Msg("failed to press wake key")
				}
			}
			closeWakeKey = func() {
				if closeErr := kbd.Close(); closeErr != nil {
					log.Warn().Err(closeErr).Msg("error closing wake keyboard")
				}
			}
		}
	}

	watcher := power.NewWatcher(power.WatcherOptions{
		Detector:  power.NewDetector(),
		Backlight: bl,
		OnChange: func(active bool) {
			st.SetScreensaverActive(active)
			notifications.Screensaver(st.Notifications, models.ScreensaverParams{
				Active: active,
			})
			recordPowerEvent(db, st.BootUUID(), active)
		},
		WakeKey: wakeKey,
	})

	if err := watcher.Start(); err != nil {
		log.Error().Err(err).Msg("screensaver watcher failed to start (continuing without it)")
		closeWakeKey()
		return nil, func() {}
	}

	return watcher, closeWakeKey
}

// recordPowerEvent logs one blank/unblank transition with enough clock
// metadata to heal its timestamp after NTP sync.
func recordPowerEvent(db database.SessionDBI, bootUUID string, active bool) {
	event := database.PowerEventUnblank
	if active {
		event = database.PowerEventBlank
	}

	now := time.Now()
	var monotonicStart int64
	if systemUptime, err := uptime.Get(); err == nil {
		monotonicStart = int64(systemUptime.Seconds())
	} else {
		log.Warn().Err(err).Msg("failed to get system uptime, using 0")
	}

	_, err := db.AddPowerEvent(&database.PowerEvent{
		CreatedAt:      now,
		ID:             uuid.NewString(),
		Event:          event,
		BootUUID:       bootUUID,
		ClockSource:    helpers.ClockSource(now),
		MonotonicStart: monotonicStart,
		ClockReliable:  helpers.IsClockReliable(now),
	})
	if err != nil {
		log.Error().Err(err).Msgf("failed to record %s power event", event)
	}
}

// watchLibrary rescans the meditation library when files under it change.
// The caller owns closing the returned watcher.
func watchLibrary(
	st *state.State,
	cfg *config.Instance,
	db database.SessionDBI,
	prober meditate.Prober,
) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create library watcher: %w", err)
	}

	dir := cfg.MeditationsDir(helpers.DataDir())
	if addErr := watcher.Add(dir); addErr != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing library watcher")
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, addErr)
	}

	go func() {
		// nil until an event arrives, so the rescan case never fires early
		var pending <-chan time.Time

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
					!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				log.Debug().Msgf("library change detected: %s", event)
				pending = time.After(libraryRescanDebounce)
			case <-pending:
				pending = nil
				indexLibrary(st, cfg, db, prober)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(watchErr).Msg("library watcher error")
			case <-st.GetContext().Done():
				return
			}
		}
	}()

	return watcher, nil
}

// indexLibrary scans the meditation directory and reports progress on the
// notification stream.
func indexLibrary(
	st *state.State,
	cfg *config.Instance,
	db database.SessionDBI,
	prober meditate.Prober,
) {
	notifications.MediaIndexing(st.Notifications, models.MediaIndexingParams{
		Indexing: true,
	})

	tracks, err := meditate.ScanLibrary(
		st.GetContext(), cfg.MeditationsDir(helpers.DataDir()), db, prober)
	if err != nil {
		log.Error().Err(err).Msg("error scanning meditation library")
	} else {
		log.Info().Msgf("meditation library indexed: %d track(s)", len(tracks))
	}

	notifications.MediaIndexing(st.Notifications, models.MediaIndexingParams{
		TotalTracks: len(tracks),
		Indexing:    false,
	})
}

// monitorClockAndHealTimestamps watches for the system clock becoming
// reliable and then heals session timestamps recorded before NTP sync. Decks
// boot without an RTC and initially report 1970 epoch time; once NTP syncs,
// correct timestamps can be reconstructed from monotonic uptime.
func monitorClockAndHealTimestamps(ctx context.Context, db database.SessionDBI, bootUUID string) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	healed := false
	wasReliable := helpers.IsClockReliable(time.Now())

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			isReliable := helpers.IsClockReliable(now)

			// an unreliable → reliable transition is the NTP sync event
			if !wasReliable && isReliable && !healed {
				log.Info().Msg("clock became reliable (NTP sync detected), healing timestamps")

				systemUptime, err := uptime.Get()
				if err != nil {
					log.Error().Err(err).Msg("failed to get system uptime for timestamp healing")
					wasReliable = isReliable
					continue
				}

				trueBootTime := now.Add(-systemUptime)
				log.Info().
					Time("true_boot_time", trueBootTime).
					Dur("uptime", systemUptime).
					Msg("calculated true boot time")

				rowsHealed, healErr := db.HealTimestamps(bootUUID, trueBootTime)
				if healErr != nil {
					log.Error().Err(healErr).Msg("failed to heal timestamps")
				} else if rowsHealed > 0 {
					log.Info().Int64("rows", rowsHealed).Msg("successfully healed timestamps")
				}

				healed = true
			}

			wasReliable = isReliable

		case <-ctx.Done():
			return
		}
	}
}
