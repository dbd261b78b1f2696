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
	"context"
	"time"

	"github.com/rivo/tview"
)

// TUIRequestTimeout is the timeout for API requests from the TUI. It is
// shorter than the default API timeout since all calls are to localhost.
const TUIRequestTimeout = 5 * time.Second

// tuiContext creates a context with the TUI request timeout. Use this
// for API calls from the TUI to avoid long hangs.
func tuiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), TUIRequestTimeout)
}

func CenterWidget(width, height int, p tview.Primitive) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

type PrimitiveWithSetBorder interface {
	tview.Primitive
	SetBorder(arg bool) *tview.Box
}

func pageDefaults[S PrimitiveWithSetBorder](name string, pages *tview.Pages, widget S) tview.Primitive {
	widget.SetBorder(true)
	pages.AddAndSwitchToPage(name, widget, true)
	return widget
}

// showInfoModal overlays a message with a single OK button. Dismissing
// it removes the overlay and restores focus to the given primitive.
func showInfoModal(
	pages *tview.Pages,
	app *tview.Application,
	title string,
	message string,
	returnFocus tview.Primitive,
) {
	const pageName = "info_modal"

	modal := tview.NewModal()
	modal.SetTitle(title).
		SetBorder(true).
		SetTitleAlign(tview.AlignCenter)
	modal.SetText(message)
	modal.AddButtons([]string{"OK"}).
		SetDoneFunc(func(_ int, _ string) {
			pages.RemovePage(pageName)
			if returnFocus != nil {
				app.SetFocus(returnFocus)
			}
		})

	pages.AddPage(pageName, modal, true, true)
	app.SetFocus(modal)
}
