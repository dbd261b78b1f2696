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

package slugs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugifyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name",
			input: "Body Scan",
			want:  "bodyscan",
		},
		{
			name:  "track number prefix",
			input: "03 - Morning Calm",
			want:  "morningcalm",
		},
		{
			name:  "dot numbered prefix",
			input: "12. Deep Breathing",
			want:  "deepbreathing",
		},
		{
			name:  "diacritics removed",
			input: "Déjà Vu",
			want:  "dejavu",
		},
		{
			name:  "bracketed metadata removed",
			input: "Ocean Waves (Remastered) [loop]",
			want:  "oceanwaves",
		},
		{
			name:  "punctuation collapsed",
			input: "Rain & Thunder, pt. 2",
			want:  "rainthunderpt2",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, SlugifyName(tt.input))
		})
	}
}

func TestSlugifyNameIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"03 - Morning Calm",
		"Déjà Vu",
		"Ocean Waves (Remastered)",
	}

	for _, input := range inputs {
		once := SlugifyName(input)
		twice := SlugifyName(once)
		assert.Equal(t, once, twice)
	}
}

func TestStripTrackNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Morning Calm", StripTrackNumber("03 - Morning Calm"))
	assert.Equal(t, "Morning Calm", StripTrackNumber("3. Morning Calm"))
	assert.Equal(t, "Morning Calm", StripTrackNumber("Morning Calm"))
	// 4+ digit numbers are treated as part of the name, not track numbers
	assert.Equal(t, "2001 A Space Odyssey", StripTrackNumber("2001 A Space Odyssey"))
}
