package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extra files staged into the release archive alongside the binary. Paths
// are relative to the repo root, which is where the release task runs.
var extraItems = []string{
	"pkg/installer/conf/cyberdeck.service",
}

func releaseReadme(appBin string) string {
	return strings.TrimSpace(fmt.Sprintf(`Cyberdeck Core
==============

Quick install:

  1. Copy %[1]s to /usr/local/bin/cyberdeck and make it executable:

       sudo install -m 755 %[1]s /usr/local/bin/cyberdeck

  2. Run the guided installer to set up the systemd service and apply
     the display configuration:

       sudo cyberdeck -install

Manual service setup:

  If you would rather not use the installer, copy cyberdeck.service to
  /etc/systemd/system/ and enable it:

       sudo cp cyberdeck.service /etc/systemd/system/
       sudo systemctl daemon-reload
       sudo systemctl enable --now cyberdeck

Running cyberdeck with no arguments opens the status screen. See
cyberdeck -help for the full list of flags.
`, appBin)) + "\n"
}

func main() {
	if len(os.Args) < 4 {
		_, _ = fmt.Println("Usage: go run ./scripts/tasks/utils/makezip <build_dir> <app_bin> <zip_name>")
		os.Exit(1)
	}

	buildDir := os.Args[1]
	appBin := os.Args[2]
	zipName := os.Args[3]

	if _, err := os.Stat(buildDir); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified directory '%s' does not exist\n", buildDir)
		os.Exit(1)
	}

	licensePath := filepath.Join(buildDir, "LICENSE.txt")
	if _, err := os.Stat(licensePath); os.IsNotExist(err) {
		input, err := os.ReadFile("LICENSE")
		if err != nil {
			_, _ = fmt.Printf("Error reading LICENSE file: %v\n", err)
			os.Exit(1)
		}
		err = os.WriteFile(licensePath, input, 0o644)
		if err != nil {
			_, _ = fmt.Printf("Error copying LICENSE file: %v\n", err)
			os.Exit(1)
		}
	}

	appPath := filepath.Join(buildDir, appBin)
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified binary file '%s' does not exist\n", appPath)
		os.Exit(1)
	}

	zipPath := filepath.Join(buildDir, zipName)
	_ = os.Remove(zipPath)

	readmePath := filepath.Join(buildDir, "README.txt")
	if _, err := os.Stat(readmePath); os.IsNotExist(err) {
		if err := os.WriteFile(readmePath, []byte(releaseReadme(appBin)), 0o644); err != nil {
			_, _ = fmt.Printf("Error writing README: %v\n", err)
			os.Exit(1)
		}
	}

	if err := createZipFile(zipPath, appPath, licensePath, readmePath, buildDir); err != nil {
		_, _ = fmt.Printf("Error creating zip: %v\n", err)
		os.Exit(1)
	}
}

func createZipFile(zipPath, appPath, licensePath, readmePath, buildDir string) error {
	zipFile, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("error creating zip file: %w", err)
	}
	defer func(zipFile *os.File) {
		_ = zipFile.Close()
	}(zipFile)

	zipWriter := zip.NewWriter(zipFile)
	defer func(zipWriter *zip.Writer) {
		_ = zipWriter.Close()
	}(zipWriter)

	filesToAdd := []struct {
		path    string
		arcname string
	}{
		{appPath, filepath.Base(appPath)},
		{licensePath, filepath.Base(licensePath)},
		{readmePath, filepath.Base(readmePath)},
	}

	for _, file := range filesToAdd {
		err := addFileToZip(zipWriter, file.path, file.arcname)
		if err != nil {
			return fmt.Errorf("error adding file to zip: %w", err)
		}
	}

	for _, item := range extraItems {
		if _, err := os.Stat(item); err != nil {
			continue
		}
		destPath := filepath.Join(buildDir, filepath.Base(item))
		if copyErr := copyFile(item, destPath); copyErr != nil {
			return fmt.Errorf("error copying extra file: %w", copyErr)
		}
		if err := addFileToZip(zipWriter, destPath, filepath.Base(item)); err != nil {
			return fmt.Errorf("error adding extra item to zip: %w", err)
		}
	}

	return nil
}

func addFileToZip(zipWriter *zip.Writer, filePath, arcname string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = arcname
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0o644)
}
