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
	"os"
	"strings"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/slugs"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Program is a named, ordered playlist from the programs file. Track
// entries are matched against the library by name, the same way the
// -track flag is.
type Program struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tracks      []string `yaml:"tracks"`
	PaddingSecs *int     `yaml:"padding_secs,omitempty"`
}

type programsFile struct {
	Programs []Program `yaml:"programs"`
}

// LoadPrograms reads the programs YAML file. A missing file is not an
// error, it just means no named programs are defined. Entries without a
// name or tracks are dropped with a warning rather than failing the whole
// file.
func LoadPrograms(fs afero.Fs, path string) ([]Program, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read programs file: %w", err)
	}

	var pf programsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse programs file: %w", err)
	}

	programs := make([]Program, 0, len(pf.Programs))
	for _, program := range pf.Programs {
		if program.Name == "" {
			log.Warn().Str("file", path).Msg("skipping program without a name")
			continue
		}
		if len(program.Tracks) == 0 {
			log.Warn().Str("program", program.Name).Msg("skipping program without tracks")
			continue
		}
		programs = append(programs, program)
	}

	return programs, nil
}

// FindProgram resolves a user-supplied name to a program, case-insensitive
// first, fuzzy second.
func FindProgram(programs []Program, name string) (Program, bool) {
	for _, program := range programs {
		if strings.EqualFold(program.Name, name) {
			return program, true
		}
	}

	slug := slugs.SlugifyName(name)
	if slug == "" {
		return Program{}, false
	}

	best := -1
	var bestScore float32
	for i, program := range programs {
		score := edlib.JaroWinklerSimilarity(slug, slugs.SlugifyName(program.Name))
		if score >= minTrackSimilarity && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return Program{}, false
	}

	log.Debug().
		Str("query", name).
		Str("match", programs[best].Name).
		Float32("similarity", bestScore).
		Msg("fuzzy matched meditation program")
	return programs[best], true
}
