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

// Package slugs normalizes audio track names for matching. Track files come
// from all over (rips, downloads, phone recordings), so lookups have to
// survive case, punctuation, diacritics and numbering differences:
//
//	"03 - Déjà Vu (Remastered).mp3" → "dejavuremastered"
//
// SlugifyName is deterministic and idempotent:
//
//	SlugifyName(SlugifyName(x)) == SlugifyName(x)
package slugs

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	trackNumberPrefixRegex = regexp.MustCompile(`^\s*\d{1,3}\s*[-._)\s]\s*`)
	bracketMetadataRegex   = regexp.MustCompile(`[([{][^)\]}]*[)\]}]`)
	nonAlphanumericRegex   = regexp.MustCompile(`[^a-z0-9]+`)
)

// removeDiacritics strips diacritical marks from text.
func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}

// StripTrackNumber removes a leading track number like "03 - " or "12.".
func StripTrackNumber(s string) string {
	return trackNumberPrefixRegex.ReplaceAllString(s, "")
}

// StripMetadataBrackets removes bracketed metadata like "(Remastered)" or
// "[live]".
func StripMetadataBrackets(s string) string {
	return bracketMetadataRegex.ReplaceAllString(s, " ")
}

// SlugifyName converts a track name (without extension) to a normalized slug.
func SlugifyName(input string) string {
	s := StripTrackNumber(input)
	s = StripMetadataBrackets(s)
	s = removeDiacritics(s)
	s = strings.ToLower(s)
	s = nonAlphanumericRegex.ReplaceAllString(s, "")
	return s
}
