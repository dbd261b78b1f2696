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
	"fmt"
	"math/rand"
	"strings"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/syncutil"
	"github.com/gdamore/tcell/v2"
)

const blockTitle = "Meditation Session"

// rainChars is the character pool for the falling noise. Space is weighted
// heavily so the field stays sparse; the rest mixes ASCII, Cyrillic and
// halfwidth katakana, all single-cell wide.
const rainChars = " abcdefghijklmnopqrstuvwxyz0123456789" +
	"!@#$%^&*()_+-][}{;:<>,./?`~" +
	"абвгдежзиклмнопрстуфхцчшщъыьэюя" +
	"ｦｧｨｩｪｫｬｭｮｯｰｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ"

const spaceWeight = 50

var rainRunes = []rune(rainChars)

// rainGreens are the 256-color palette greens each column picks from.
var rainGreens = []int{22, 28, 34, 35, 40, 41, 46, 47, 76, 77, 82, 83}

func randRune(rng *rand.Rand) rune {
	idx := rng.Intn(spaceWeight + len(rainRunes) - 1)
	if idx < spaceWeight {
		return ' '
	}
	return rainRunes[idx-spaceWeight+1]
}

func randGreen(rng *rand.Rand) tcell.Color {
	return tcell.PaletteColor(rainGreens[rng.Intn(len(rainGreens))])
}

// Block line kinds, used to style the active track line.
const (
	lineDefault = iota
	lineActive
	lineInbetween
)

type blockLine struct {
	text string
	kind int
}

// buildBlock renders the status block text: a full-width bar, the title,
// one line per planned track and a closing bar. The active track line is
// prefixed ">> " while playing and "++ " during the padding after it.
func buildBlock(plan Plan, active int, inbetween bool, width int) []blockLine {
	if width < 1 {
		width = 1
	}
	bar := strings.Repeat("=", width)

	lines := make([]blockLine, 0, len(plan.Tracks)+6)
	lines = append(lines,
		blockLine{text: bar},
		blockLine{},
		blockLine{text: blockTitle},
		blockLine{},
	)
	for i, planned := range plan.Tracks {
		prefix := "   "
		kind := lineDefault
		if i == active {
			if inbetween {
				prefix = "++ "
				kind = lineInbetween
			} else {
				prefix = ">> "
				kind = lineActive
			}
		}
		text := fmt.Sprintf("%s%s %s (%s)",
			prefix,
			helpers.ClockDuration(planned.Offset),
			planned.Track.Name,
			helpers.ClockDuration(planned.Track.Duration),
		)
		lines = append(lines, blockLine{text: text, kind: kind})
	}
	lines = append(lines, blockLine{}, blockLine{text: bar})
	return lines
}

func blockStyle(kind int) tcell.Style {
	switch kind {
	case lineActive:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case lineInbetween:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	default:
		return tcell.StyleDefault
	}
}

type rainColumn struct {
	color tcell.Color
	head  int
	trail int
}

// Rain draws the session heartbeat: columns of falling characters around a
// status block listing the planned tracks. The screen is owned by the
// caller; Rain only draws on it.
type Rain struct {
	screen    tcell.Screen
	rng       *rand.Rand
	cols      []rainColumn
	block     []blockLine
	plan      Plan
	mu        syncutil.Mutex
	height    int
	top       int
	active    int
	inbetween bool
}

// NewRain creates a heartbeat renderer on screen. Nothing is drawn until
// SetPlan is called.
func NewRain(screen tcell.Screen, rng *rand.Rand) *Rain {
	return &Rain{
		screen: screen,
		rng:    rng,
		active: -1,
	}
}

// SetPlan installs the session plan and resets the whole field.
func (r *Rain) SetPlan(plan Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = plan
	r.active = -1
	r.inbetween = false
	r.layout()
}

// SetState marks which track is playing. inbetween means the track has
// finished and the session is in the padding after it. The status block
// moves to a fresh row on every change.
func (r *Rain) SetState(active int, inbetween bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
	r.inbetween = inbetween
	r.layout()
}

// Relocate moves the status block to a new random row. The pulse loop
// calls it on each backlight relight so a burned-in block never sits still
// for long.
func (r *Rain) Relocate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout()
}

// layout rebuilds columns and block placement for the current screen size.
// Callers must hold mu.
func (r *Rain) layout() {
	width, height := r.screen.Size()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.height = height

	r.cols = make([]rainColumn, width)
	for i := range r.cols {
		r.cols[i] = rainColumn{
			head:  r.rng.Intn(2*height) - height,
			trail: minTrail(height) + r.rng.Intn(height/2+1),
			color: randGreen(r.rng),
		}
	}

	r.block = buildBlock(r.plan, r.active, r.inbetween, width)
	maxTop := height - len(r.block)
	if maxTop < 1 {
		maxTop = 1
	}
	r.top = r.rng.Intn(maxTop)

	r.screen.Clear()
	r.drawBlock(width)
	r.screen.Show()
}

func minTrail(height int) int {
	if height < 6 {
		return 1
	}
	return 3
}

// Tick advances every column one row and redraws the status block on top.
func (r *Rain) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, height := r.screen.Size()
	if width != len(r.cols) || height != r.height {
		r.layout()
		return
	}

	for i := range r.cols {
		col := &r.cols[i]
		col.head++

		if col.head-col.trail >= height {
			col.head = -r.rng.Intn(height + 1)
			col.trail = minTrail(height) + r.rng.Intn(height/2+1)
			col.color = randGreen(r.rng)
			continue
		}

		if col.head >= 0 && col.head < height {
			style := tcell.StyleDefault.Foreground(col.color)
			r.screen.SetContent(i, col.head, randRune(r.rng), nil, style)
		}
		if tail := col.head - col.trail; tail >= 0 && tail < height {
			r.screen.SetContent(i, tail, ' ', nil, tcell.StyleDefault)
		}
	}

	r.drawBlock(width)
	r.screen.Show()
}

// drawBlock paints the status block as an opaque band so the rain never
// shows through the text. Callers must hold mu.
func (r *Rain) drawBlock(width int) {
	for li, line := range r.block {
		y := r.top + li
		if y >= r.height {
			break
		}
		style := blockStyle(line.kind)
		x := 0
		for _, ch := range line.text {
			if x >= width {
				break
			}
			r.screen.SetContent(x, y, ch, nil, style)
			x++
		}
		for ; x < width; x++ {
			r.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}
