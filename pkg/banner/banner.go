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

// Package banner renders the login banner: ASCII art plus live system
// stats with ANSI colors.
package banner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/display"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/afero"
)

// ThermalZonePath exposes the SoC temperature in millidegrees celsius.
const ThermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// cpuSampleInterval is how long per-core usage is sampled for.
const cpuSampleInterval = 100 * time.Millisecond

const (
	ansiReset   = "\x1b[0m"
	ansiClear   = "\x1b[2J"
	colorBlue   = "\x1b[1;34m"
	colorYellow = "\x1b[1;33m"
	colorRed    = "\x1b[1;31m"
	colorGreen  = "\x1b[1;32m"
	colorViolet = "\x1b[1;35m"
	colorCyan   = "\x1b[1;36m"
)

// art is the banner logo in graded shades of green, with the version
// slotted in at render time.
const art = "\n" +
	"\x1b[38;5;40m===========================================================\n" +
	" _____         _                     _              _\n" +
	"/  __ \\       | |                   | |            | |\n" +
	"\x1b[38;5;41m| /  \\/ _   _ | |__    ___  _ __  __| |  ___   ___ | | __\n" +
	"| |    | | | || '_ \\  / _ \\| '__|/ _` | / _ \\ / __|| |/ /\n" +
	"| \\__/\\| |_| || |_) ||  __/| |  | (_| ||  __/| (__ |   <\n" +
	"\x1b[38;5;42m \\____/ \\__, ||_.__/  \\___||_|   \\__,_| \\___| \\___||_|\\_\\\n" +
	"         __/ |\n" +
	"        |___/                                        \x1b[38;5;45mv%s\n" +
	"\x1b[38;5;46m===========================================================\n" +
	ansiReset + "\n"

// wakeArt is shown by the meditation alarm.
const wakeArt = "\n" +
	" _    _         _              _   _\n" +
	"| |  | |       | |            | | | |\n" +
	"| |  | |  __ _ | | __  ___    | | | | _ __\n" +
	"| |/\\| | / _` || |/ / / _ \\   | | | || '_ \\\n" +
	"\\  /\\  /| (_| ||   < |  __/   | |_| || |_) |\n" +
	" \\/  \\/  \\__,_||_|\\_\\ \\___|    \\___/ | .__/\n" +
	"                                     | |\n" +
	"                                     |_|\n"

// Stats is everything the banner shows.
type Stats struct {
	Username    string
	Hostname    string
	Remote      string
	HDMIName    string
	TouchName   string
	Mode        display.Mode
	IPs         []string
	Monitors    []display.Monitor
	CPUPercents []int
	Uptime      time.Duration
	TempF       int
	MemPercent  int
	TempOK      bool
}

// Collect gathers live stats. Failures degrade individual fields rather
// than failing the banner.
func Collect(ctx context.Context, fs afero.Fs, cfg *config.Instance,
	mode display.Mode, monitors []display.Monitor,
) Stats {
	stats := Stats{
		Mode:      mode,
		Monitors:  monitors,
		HDMIName:  cfg.HDMIOutput(),
		TouchName: cfg.TouchOutput(),
		IPs:       helpers.GetAllLocalIPs(),
		Remote:    sshClient(),
		Hostname:  hostname(),
		Username:  username(),
	}

	if temp, err := CPUTempF(fs, ThermalZonePath); err == nil {
		stats.TempF = temp
		stats.TempOK = true
	} else {
		log.Debug().Err(err).Msg("cpu temperature not readable")
	}

	if percents, err := cpu.PercentWithContext(ctx, cpuSampleInterval, true); err == nil {
		stats.CPUPercents = make([]int, 0, len(percents))
		for _, pct := range percents {
			stats.CPUPercents = append(stats.CPUPercents, int(pct))
		}
	} else {
		log.Debug().Err(err).Msg("cpu usage not readable")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemPercent = int(vm.UsedPercent)
	} else {
		log.Debug().Err(err).Msg("memory usage not readable")
	}

	if up, err := uptime.Get(); err == nil {
		stats.Uptime = up
	} else {
		log.Debug().Err(err).Msg("uptime not readable")
	}

	return stats
}

// CPUTempF reads a thermal zone file and converts millidegrees celsius
// to whole degrees fahrenheit.
func CPUTempF(fs afero.Fs, path string) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read thermal zone: %w", err)
	}

	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse thermal zone value: %w", err)
	}

	return int((milli/1000.0)*1.8 + 32), nil
}

func tempColor(tempF int) string {
	switch {
	case tempF < 110:
		return colorBlue
	case tempF < 130:
		return colorYellow
	default:
		return colorRed
	}
}

func usageColor(pct int) string {
	switch {
	case pct < 50:
		return colorBlue
	case pct < 75:
		return colorYellow
	default:
		return colorRed
	}
}

func modeLabel(mode display.Mode) string {
	switch mode {
	case display.ModeDocked:
		return "Docked"
	case display.ModeHandheld:
		return "Handheld"
	case display.ModeUnknown:
		return "Terminal"
	default:
		return "Terminal"
	}
}

// Render writes the banner.
func Render(w io.Writer, s Stats) error {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, art, config.AppVersion)

	mode := modeLabel(s.Mode)
	if s.Remote != "" {
		mode += fmt.Sprintf(" (%s%s%s)", colorViolet, s.Remote, ansiReset)
	}
	_, _ = fmt.Fprintf(&b, "Mode:      %s\n", mode)
	_, _ = fmt.Fprintf(&b, "Operator:  %s%s%s @ %s%s%s\n",
		colorYellow, s.Username, ansiReset, colorYellow, s.Hostname, ansiReset)

	if len(s.IPs) > 0 {
		_, _ = fmt.Fprintf(&b, "Network:   %s%s%s\n",
			colorViolet, strings.Join(s.IPs, " "), ansiReset)
	} else {
		_, _ = fmt.Fprintf(&b, "Network:   %sDisconnected%s\n", colorRed, ansiReset)
	}

	for _, monitor := range s.Monitors {
		var kind string
		switch monitor.Name {
		case s.HDMIName:
			kind = colorCyan + "Desktop" + ansiReset
		case s.TouchName:
			kind = colorGreen + "Terminal" + ansiReset
		default:
			kind = "unknown"
		}
		_, _ = fmt.Fprintf(&b, "Monitor:   [%d] %s %dx%d +%d.%d\n",
			monitor.ID, kind, monitor.Width, monitor.Height, monitor.X, monitor.Y)
	}

	if s.TempOK {
		_, _ = fmt.Fprintf(&b, "Temp:      %s%dF%s\n", tempColor(s.TempF), s.TempF, ansiReset)
	} else {
		_, _ = fmt.Fprintf(&b, "Temp:      %s?F%s\n", colorRed, ansiReset)
	}

	cores := make([]string, 0, len(s.CPUPercents))
	for _, pct := range s.CPUPercents {
		cores = append(cores, fmt.Sprintf("%s%d%%%s", usageColor(pct), pct, ansiReset))
	}
	_, _ = fmt.Fprintf(&b, "CPU:       %s\n", strings.Join(cores, "    "))
	_, _ = fmt.Fprintf(&b, "Memory:    %s%d%%%s\n",
		usageColor(s.MemPercent), s.MemPercent, ansiReset)

	if s.Uptime > 0 {
		_, _ = fmt.Fprintf(&b, "Uptime:    %s\n", helpers.HumanizeDuration(s.Uptime))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	return nil
}

// WakeUp clears the screen and shows the alarm banner in bold green.
func WakeUp(w io.Writer) error {
	var b strings.Builder
	b.WriteString(ansiClear + "\n")
	b.WriteString(colorGreen + wakeArt + ansiReset + "\n\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write wake banner: %w", err)
	}
	return nil
}

// WakeLines returns the alarm art line by line, without any escape codes,
// for renderers that draw cells instead of writing a terminal stream.
func WakeLines() []string {
	return strings.Split(strings.Trim(wakeArt, "\n"), "\n")
}

// sshClient returns the remote address when running over SSH.
func sshClient() string {
	fields := strings.Fields(os.Getenv("SSH_CLIENT"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "cyberdeck"
	}
	return name
}

func username() string {
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return os.Getenv("USER")
}
