// Cyberdeck Core
// Copyright (c) 2026 The Cyberdeck Project Contributors.
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

package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReleaseReadme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		appBin string
		wants  []string
	}{
		{
			name:   "mentions the binary by name",
			appBin: "cyberdeck-linux-arm64",
			wants: []string{
				"cyberdeck-linux-arm64",
				"/usr/local/bin/cyberdeck",
			},
		},
		{
			name:   "documents the installer flag",
			appBin: "cyberdeck",
			wants: []string{
				"cyberdeck -install",
				"cyberdeck.service",
				"systemctl",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := releaseReadme(tt.appBin)
			for _, want := range tt.wants {
				if !strings.Contains(result, want) {
					t.Errorf("releaseReadme(%q) missing %q", tt.appBin, want)
				}
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected README to end with a newline")
			}
		})
	}
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	if err := os.WriteFile(src, []byte("release contents"), 0o644); err != nil {
		t.Fatalf("writing source file: %v", err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile returned error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading destination file: %v", err)
	}
	if string(got) != "release contents" {
		t.Errorf("copied content = %q, want %q", got, "release contents")
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := copyFile(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "dst.txt"))
	if err == nil {
		t.Error("expected error for missing source file")
	}
}

func TestCreateZipFile(t *testing.T) {
	t.Parallel()

	buildDir := t.TempDir()

	appPath := filepath.Join(buildDir, "cyberdeck")
	licensePath := filepath.Join(buildDir, "LICENSE.txt")
	readmePath := filepath.Join(buildDir, "README.txt")

	files := map[string]string{
		appPath:     "binary bytes",
		licensePath: "GNU GENERAL PUBLIC LICENSE",
		readmePath:  "Cyberdeck Core",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}

	zipPath := filepath.Join(buildDir, "cyberdeck-linux-arm64.zip")
	if err := createZipFile(zipPath, appPath, licensePath, readmePath, buildDir); err != nil {
		t.Fatalf("createZipFile returned error: %v", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("opening created zip: %v", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	got := make(map[string]bool, len(reader.File))
	for _, f := range reader.File {
		got[f.Name] = true
	}

	// Extra items resolve relative to the repo root, so from a temp dir
	// they are skipped rather than failing the build.
	for _, want := range []string{"cyberdeck", "LICENSE.txt", "README.txt"} {
		if !got[want] {
			t.Errorf("archive missing entry %q, got %v", want, reader.File)
		}
	}
}

func TestAddFileToZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "unit.service")
	if err := os.WriteFile(src, []byte("[Unit]\nDescription=test\n"), 0o644); err != nil {
		t.Fatalf("writing source file: %v", err)
	}

	zipPath := filepath.Join(dir, "out.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("creating zip file: %v", err)
	}
	zipWriter := zip.NewWriter(zipFile)

	if err := addFileToZip(zipWriter, src, "cyberdeck.service"); err != nil {
		t.Fatalf("addFileToZip returned error: %v", err)
	}

	if err := zipWriter.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	if err := zipFile.Close(); err != nil {
		t.Fatalf("closing zip file: %v", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("opening created zip: %v", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	if len(reader.File) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(reader.File))
	}
	if reader.File[0].Name != "cyberdeck.service" {
		t.Errorf("entry name = %q, want %q", reader.File[0].Name, "cyberdeck.service")
	}
}
