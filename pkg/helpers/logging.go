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

package helpers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var logFileWriter io.Writer

// LogWriter returns the rotating file writer backing the global logger.
// A single lumberjack instance is shared so rotation stays serialized.
func LogWriter() io.Writer {
	if logFileWriter == nil {
		logFileWriter = &lumberjack.Logger{
			Filename:   filepath.Join(TempDir(), config.LogFile),
			MaxSize:    1,
			MaxBackups: 2,
		}
	}
	return logFileWriter
}

func InitLogging(writers []io.Writer) error {
	err := os.MkdirAll(TempDir(), 0o750)
	if err != nil {
		return err
	}

	logWriters := []io.Writer{LogWriter()}
	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Caller().Logger()

	return nil
}
