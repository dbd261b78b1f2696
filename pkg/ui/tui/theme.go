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
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ThemeBgColor is the background color name for use in tview color tags.
// Must match the PrimitiveBackgroundColor set in SetTheme.
const ThemeBgColor = "black"

// SetTheme applies the green-on-black terminal look. It matches the
// phosphor CRT aesthetic of the deck itself, and stays readable on the
// 800x480 touchscreen.
func SetTheme(theme *tview.Theme) {
	theme.BorderColor = tcell.ColorGreen
	theme.TitleColor = tcell.ColorGreen
	theme.PrimaryTextColor = tcell.ColorGreen
	theme.SecondaryTextColor = tcell.ColorDarkGreen
	theme.ContrastSecondaryTextColor = tcell.ColorLime
	theme.PrimitiveBackgroundColor = tcell.ColorBlack // matches ThemeBgColor
	theme.ContrastBackgroundColor = tcell.NewHexColor(0x0A1A0A)
	theme.InverseTextColor = tcell.ColorBlack
}
