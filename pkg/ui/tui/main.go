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

// Package tui is the interactive status screen shown when cyberdeck is
// run from a terminal with no flags. It talks to the service daemon
// over the local API only, so it can run as a plain user while the
// daemon keeps its own lifecycle.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/client"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/api/models"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	PageMain = "main"
	PageLog  = "log"
)

// getDeckStatus fetches the aggregate deck state over the local API.
func getDeckStatus(ctx context.Context, cfg *config.Instance) (models.DeckStatusResponse, error) {
	resp, err := client.LocalClient(ctx, cfg, models.MethodDeckStatus, "")
	if err != nil {
		return models.DeckStatusResponse{}, fmt.Errorf("deck status request failed: %w", err)
	}
	var status models.DeckStatusResponse
	err = json.Unmarshal([]byte(resp), &status)
	if err != nil {
		return models.DeckStatusResponse{}, fmt.Errorf("failed to parse deck status: %w", err)
	}
	return status, nil
}

// deckText formats the deck panel contents from a status response.
func deckText(status models.DeckStatusResponse) string {
	backlight := "unavailable"
	switch {
	case !status.Backlight.Available:
	case status.Backlight.On:
		backlight = "on"
	default:
		backlight = "off"
	}

	meditation := "idle"
	switch {
	case status.Meditation.Alarming:
		meditation = "alarm ringing"
	case status.Meditation.Running:
		meditation = fmt.Sprintf("track %d of %d",
			status.Meditation.TrackIndex+1, status.Meditation.TrackCount)
	}

	return fmt.Sprintf(
		"[::b]Mode:[::-]       %s\n[::b]Backlight:[::-]  %s\n[::b]Meditation:[::-] %s",
		status.Mode, backlight, meditation,
	)
}

// watchDeckUpdates refreshes the deck panel whenever the daemon reports
// a state change. It runs until the notification stream breaks.
func watchDeckUpdates(
	app *tview.Application,
	cfg *config.Instance,
	deckPanel *tview.TextView,
) {
	for {
		_, _, err := client.WaitNotifications(
			context.Background(), -1, cfg,
			models.NotificationDeckMode,
			models.NotificationBacklightChanged,
			models.NotificationMeditationStarted,
			models.NotificationMeditationStopped,
		)
		if errors.Is(err, client.ErrRequestTimeout) {
			continue
		} else if err != nil {
			return
		}

		ctx, cancel := tuiContext()
		status, err := getDeckStatus(ctx, cfg)
		cancel()
		if err != nil {
			continue
		}

		app.QueueUpdateDraw(func() {
			deckPanel.SetText(deckText(status))
		})
	}
}

// setupButtonNavigation wires vertical key navigation between buttons.
// When the service is down every button except the last (exit) is
// disabled.
func setupButtonNavigation(
	app *tview.Application,
	svcRunning bool,
	onEscape func(),
	buttons ...*tview.Button,
) {
	for i, button := range buttons {
		if !svcRunning && i < len(buttons)-1 {
			button.SetDisabled(true)
			continue
		}

		prevIndex := (i - 1 + len(buttons)) % len(buttons)
		nextIndex := (i + 1) % len(buttons)

		button.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			k := event.Key()
			switch k { //nolint:exhaustive
			case tcell.KeyUp, tcell.KeyLeft:
				app.SetFocus(buttons[prevIndex])
				return event
			case tcell.KeyDown, tcell.KeyRight:
				app.SetFocus(buttons[nextIndex])
				return event
			case tcell.KeyEscape:
				if onEscape != nil {
					onEscape()
				}
				return nil
			}
			return event
		})
	}
}

func BuildMainPage(
	cfg *config.Instance,
	pages *tview.Pages,
	app *tview.Application,
	isRunning func() bool,
	logDestPath string,
) tview.Primitive {
	main := tview.NewFlex()

	statusText := tview.NewTextView().SetDynamicColors(true)

	svcRunning := isRunning()
	var svcStatus string
	if svcRunning {
		svcStatus = "RUNNING"
	} else {
		svcStatus = "NOT RUNNING\nThe service may not have started. Check logs for more information."
	}

	ip := helpers.GetLocalIP()
	if ip == "" {
		ip = "Unknown"
	}

	statusText.SetText(
		fmt.Sprintf(
			"[::b]Status:[::-]  %s\n[::b]Address:[::-] %s\n[::b]API:[::-]     ws://localhost:%d",
			svcStatus,
			ip,
			cfg.APIPort(),
		),
	)

	helpText := tview.NewTextView()
	deckPanel := tview.NewTextView()
	deckPanel.SetDynamicColors(true)
	deckPanel.SetBorder(true).SetTitle("Deck")

	if svcRunning {
		ctx, cancel := tuiContext()
		status, err := getDeckStatus(ctx, cfg)
		cancel()
		if err != nil {
			deckPanel.SetText("Error reading deck status:\n" + err.Error())
		} else {
			deckPanel.SetText(deckText(status))
			go watchDeckUpdates(app, cfg, deckPanel)
		}
	} else {
		deckPanel.SetText(deckText(models.DeckStatusResponse{Mode: "unknown"}))
	}

	displayCol := tview.NewFlex().SetDirection(tview.FlexRow)
	displayCol.AddItem(statusText, 0, 1, false)
	displayCol.AddItem(deckPanel, 5, 1, false)
	displayCol.AddItem(helpText, 1, 1, false)

	main.SetTitle("Cyberdeck Core v" + config.AppVersion).
		SetBorder(true).
		SetTitleAlign(tview.AlignCenter)

	main.AddItem(displayCol, 0, 1, false)

	refreshPanel := func() {
		ctx, cancel := tuiContext()
		status, err := getDeckStatus(ctx, cfg)
		cancel()
		if err == nil {
			deckPanel.SetText(deckText(status))
		}
	}

	applyButton := tview.NewButton("Apply layout").SetSelectedFunc(func() {
		ctx, cancel := tuiContext()
		_, err := client.LocalClient(ctx, cfg, models.MethodDisplayApply, "")
		cancel()
		outcome := "Display layout applied."
		if err != nil {
			outcome = "Error applying layout:\n" + err.Error()
		}
		refreshPanel()
		showInfoModal(pages, app, "Apply Layout", outcome, app.GetFocus())
	})
	applyButton.SetFocusFunc(func() {
		helpText.SetText("Re-apply the dual screen layout.")
	})

	backlightButton := tview.NewButton("Toggle backlight").SetSelectedFunc(func() {
		outcome := toggleBacklight(cfg)
		refreshPanel()
		showInfoModal(pages, app, "Backlight", outcome, app.GetFocus())
	})
	backlightButton.SetFocusFunc(func() {
		helpText.SetText("Switch the touchscreen backlight on or off.")
	})

	meditateButton := tview.NewButton("Meditate").SetSelectedFunc(func() {
		outcome := toggleMeditation(cfg)
		refreshPanel()
		showInfoModal(pages, app, "Meditation", outcome, app.GetFocus())
	})
	meditateButton.SetFocusFunc(func() {
		helpText.SetText("Start or stop a meditation session on the deck.")
	})

	logButton := tview.NewButton("View log").SetSelectedFunc(func() {
		BuildLogPage(pages, app, logDestPath)
	})
	logButton.SetFocusFunc(func() {
		helpText.SetText("View the service log.")
	})

	exitButton := tview.NewButton("Exit").SetSelectedFunc(func() {
		app.Stop()
	})
	exitButton.SetFocusFunc(func() {
		if svcRunning {
			helpText.SetText("Exit. (service will continue running)")
		} else {
			helpText.SetText("Exit.")
		}
	})

	setupButtonNavigation(
		app,
		svcRunning,
		app.Stop,
		applyButton,
		backlightButton,
		meditateButton,
		logButton,
		exitButton,
	)

	main.AddItem(tview.NewTextView(), 1, 1, false)

	buttonNav := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView(), 0, 1, false).
		AddItem(applyButton, 1, 1, svcRunning).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(backlightButton, 1, 1, false).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(meditateButton, 1, 1, false).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(logButton, 1, 1, false).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(exitButton, 1, 1, !svcRunning).
		AddItem(tview.NewTextView(), 0, 1, false)
	main.AddItem(buttonNav, 20, 1, true)

	pageDefaults(PageMain, pages, main)
	return main
}

// toggleBacklight reads the current backlight state and requests the
// opposite one, returning a message describing what happened.
func toggleBacklight(cfg *config.Instance) string {
	ctx, cancel := tuiContext()
	defer cancel()

	resp, err := client.LocalClient(ctx, cfg, models.MethodBacklightState, "")
	if err != nil {
		return "Error reading backlight state:\n" + err.Error()
	}
	var state models.BacklightStateResponse
	if err := json.Unmarshal([]byte(resp), &state); err != nil {
		return "Error reading backlight state:\n" + err.Error()
	}
	if !state.Available {
		return "No backlight control on this deck."
	}

	method := models.MethodBacklightOn
	outcome := "Backlight switched on."
	if state.On {
		method = models.MethodBacklightOff
		outcome = "Backlight switched off."
	}
	if _, err := client.LocalClient(ctx, cfg, method, ""); err != nil {
		return "Error switching backlight:\n" + err.Error()
	}
	return outcome
}

// toggleMeditation starts a session with default settings, or stops the
// one that is running.
func toggleMeditation(cfg *config.Instance) string {
	ctx, cancel := tuiContext()
	defer cancel()

	resp, err := client.LocalClient(ctx, cfg, models.MethodMeditateStatus, "")
	if err != nil {
		return "Error reading meditation status:\n" + err.Error()
	}
	var status models.MeditationStatusResponse
	if err := json.Unmarshal([]byte(resp), &status); err != nil {
		return "Error reading meditation status:\n" + err.Error()
	}

	if status.Running {
		if _, err := client.LocalClient(ctx, cfg, models.MethodMeditateStop, ""); err != nil {
			return "Error stopping session:\n" + err.Error()
		}
		return "Meditation session stopped."
	}

	if _, err := client.LocalClient(ctx, cfg, models.MethodMeditateStart, ""); err != nil {
		return "Error starting session:\n" + err.Error()
	}
	return "Meditation session started."
}

func BuildMain(
	cfg *config.Instance,
	isRunning func() bool,
	logDestPath string,
) (*tview.Application, error) {
	app := tview.NewApplication()
	SetTheme(&tview.Styles)

	pages := tview.NewPages()
	BuildMainPage(cfg, pages, app, isRunning, logDestPath)

	centeredPages := CenterWidget(75, 15, pages)
	return app.SetRoot(centeredPages, true), nil
}
