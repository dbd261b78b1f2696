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

package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// logViewLines is how many lines of the log the viewer shows. The deck
// screen fits far fewer, the rest is scrollback.
const logViewLines = 50

// BuildLogPage shows the tail of the service log with the newest lines
// first. The log lives in the temp dir and is lost on reboot, so Save
// copies it to the persistent data dir.
func BuildLogPage(
	pages *tview.Pages,
	app *tview.Application,
	logDestPath string,
) tview.Primitive {
	logPath := filepath.Join(helpers.TempDir(), config.LogFile)

	logViewer := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true)

	loadLogContent := func() {
		content, err := readLastLines(logPath, logViewLines)
		if err != nil {
			logViewer.SetText(fmt.Sprintf("Error reading log file: %v", err))
		} else {
			logViewer.SetText(formatLogContent(content))
			logViewer.ScrollToBeginning()
		}
	}
	loadLogContent()

	goBack := func() {
		pages.RemovePage(PageLog)
		pages.SwitchToPage(PageMain)
	}

	refreshButton := tview.NewButton("Refresh").SetSelectedFunc(loadLogContent)

	saveButton := tview.NewButton("Save").SetSelectedFunc(func() {
		outcome := saveLog(logPath, logDestPath)
		showInfoModal(pages, app, "Save Log", outcome, app.GetFocus())
	})

	backButton := tview.NewButton("Back").SetSelectedFunc(goBack)

	// The log page never locks up without the service, so navigation is
	// always enabled.
	setupButtonNavigation(app, true, goBack, refreshButton, saveButton, backButton)

	buttonRow := tview.NewFlex().
		AddItem(tview.NewTextView(), 0, 1, false).
		AddItem(refreshButton, 11, 1, true).
		AddItem(tview.NewTextView(), 2, 1, false).
		AddItem(saveButton, 8, 1, false).
		AddItem(tview.NewTextView(), 2, 1, false).
		AddItem(backButton, 8, 1, false).
		AddItem(tview.NewTextView(), 0, 1, false)

	logFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(logViewer, 0, 1, false).
		AddItem(tview.NewTextView(), 1, 1, false).
		AddItem(buttonRow, 1, 1, true)
	logFlex.SetTitle("Service Log").SetTitleAlign(tview.AlignCenter)

	pageDefaults(PageLog, pages, logFlex)
	app.SetFocus(refreshButton)
	return logFlex
}

// saveLog copies the volatile log file to destPath and reports what
// happened in a user-facing message.
func saveLog(logPath, destPath string) string {
	err := helpers.CopyFile(logPath, destPath)
	if err != nil {
		log.Error().Err(err).Msg("error copying log file")
		return fmt.Sprintf("Unable to copy log file to %s.", destPath)
	}
	return fmt.Sprintf("Copied %s to %s.", config.LogFile, destPath)
}

// readLastLines reads the last n lines from a file.
func readLastLines(filePath string, n int) (string, error) {
	//nolint:gosec // path is from internal settings, not user input
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read log file: %w", err)
	}

	lines := strings.Split(string(content), "\n")

	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start := 0
	if len(lines) > n {
		start = len(lines) - n
	}

	return strings.Join(lines[start:], "\n"), nil
}

// logEntry is a parsed JSON log line.
type logEntry struct {
	Level   string `json:"level"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

var logLevelColors = map[string]string{
	"error": "red",
	"warn":  "yellow",
	"info":  "green",
	"debug": "gray",
}

// formatLogEntry colors a log line by level and shortens its timestamp.
// Lines that aren't JSON pass through untouched.
func formatLogEntry(line string) string {
	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line
	}

	color, exists := logLevelColors[entry.Level]
	if !exists {
		color = "white"
	}

	timestamp := entry.Time
	if t, err := time.Parse(time.RFC3339, entry.Time); err == nil {
		timestamp = t.Format("15:04:05")
	}

	levelUpper := strings.ToUpper(entry.Level)
	return fmt.Sprintf("[%s::b]%5s[-:-:-] %s %s",
		color, levelUpper, timestamp, entry.Message)
}

// formatLogContent parses and formats log content, newest first.
func formatLogContent(content string) string {
	lines := strings.Split(content, "\n")

	var nonEmpty []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty = append(nonEmpty, line)
		}
	}

	for i, j := 0, len(nonEmpty)-1; i < j; i, j = i+1, j-1 {
		nonEmpty[i], nonEmpty[j] = nonEmpty[j], nonEmpty[i]
	}

	formatted := make([]string, 0, len(nonEmpty))
	for _, line := range nonEmpty {
		formatted = append(formatted, formatLogEntry(line))
	}

	return strings.Join(formatted, "\n")
}
