package installer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers"
	"github.com/CyberdeckProject/cyberdeck-core/pkg/helpers/command"
)

//go:embed conf/cyberdeck.service
var systemdUnitFile string

//go:embed conf/cyberdeck-session.desktop
var autostartFile string

const (
	binInstallPath  = "/usr/local/bin/cyberdeck"
	systemdUnitPath = "/etc/systemd/system/cyberdeck.service"
	autostartPath   = "/etc/xdg/autostart/cyberdeck-session.desktop"
	installMsg      = `Cyberdeck will perform the following steps if required:
- Copy the cyberdeck binary to /usr/local/bin.
- Install a systemd unit so the Cyberdeck service starts at boot.
- Add a session autostart entry so the display is configured when the
  desktop session starts.

These steps are safe and can be reverted with the uninstall command.

Continue with install?`
)

func CLIInstall() error {
	if !helpers.YesNoPrompt(installMsg, true) {
		_, _ = fmt.Println("Aborting install.")
		return nil
	}
	err := Install()
	if err != nil {
		_, _ = fmt.Println("Error during install:", err)
		return err
	}
	_, _ = fmt.Println("Install complete. The service will start at next boot.")
	return nil
}

func Install() error {
	if os.Geteuid() != 0 {
		return errors.New("install must be run as root")
	}
	return doInstall(&command.RealExecutor{}, "/")
}

// doInstall stages everything under root, which is "/" in production and a
// temp dir in tests.
func doInstall(cmdExec command.Executor, root string) error {
	// install binary
	binPath := filepath.Join(root, binInstallPath)
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("error locating current binary: %w", err)
	}
	if exe != binPath {
		if _, err := os.Stat(filepath.Dir(binPath)); os.IsNotExist(err) {
			return errors.New("binary install directory does not exist")
		}
		data, err := os.ReadFile(exe) //nolint:gosec // reading our own binary
		if err != nil {
			return fmt.Errorf("error reading current binary: %w", err)
		}
		// write-then-rename so a running service binary can be replaced
		tmpPath := binPath + ".new"
		err = os.WriteFile(tmpPath, data, 0o755) //nolint:gosec // binary must be executable
		if err != nil {
			return fmt.Errorf("error staging binary: %w", err)
		}
		err = os.Rename(tmpPath, binPath)
		if err != nil {
			return fmt.Errorf("error installing binary: %w", err)
		}
	}

	// install systemd unit
	unitPath := filepath.Join(root, systemdUnitPath)
	if _, err := os.Stat(filepath.Dir(unitPath)); os.IsNotExist(err) {
		return errors.New("systemd unit directory does not exist")
	} else if _, err := os.Stat(unitPath); os.IsNotExist(err) {
		err = os.WriteFile(unitPath, []byte(systemdUnitFile), 0o644) //nolint:gosec // unit must be world-readable
		if err != nil {
			return fmt.Errorf("error creating systemd unit: %w", err)
		}
		// these are just for convenience, don't care too much if they fail
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = cmdExec.Run(ctx, "systemctl", "daemon-reload")
		_ = cmdExec.Run(ctx, "systemctl", "enable", "cyberdeck")
		cancel()
	}

	// install session autostart entry
	entryPath := filepath.Join(root, autostartPath)
	if _, err := os.Stat(filepath.Dir(entryPath)); os.IsNotExist(err) {
		return errors.New("autostart directory does not exist")
	} else if _, err := os.Stat(entryPath); os.IsNotExist(err) {
		err = os.WriteFile(entryPath, []byte(autostartFile), 0o644) //nolint:gosec // entry must be world-readable
		if err != nil {
			return fmt.Errorf("error creating autostart entry: %w", err)
		}
	}

	return nil
}

func CLIUninstall() error {
	err := Uninstall()
	if err != nil {
		_, _ = fmt.Println("Error during uninstall:", err)
		return err
	}
	_, _ = fmt.Println("Uninstall complete.")
	return nil
}

func Uninstall() error {
	if os.Geteuid() != 0 {
		return errors.New("uninstall must be run as root")
	}
	return doUninstall(&command.RealExecutor{}, "/")
}

func doUninstall(cmdExec command.Executor, root string) error {
	// remove systemd unit
	unitPath := filepath.Join(root, systemdUnitPath)
	if _, err := os.Stat(unitPath); !os.IsNotExist(err) {
		// these are just for convenience, don't care too much if they fail
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = cmdExec.Run(ctx, "systemctl", "stop", "cyberdeck")
		_ = cmdExec.Run(ctx, "systemctl", "disable", "cyberdeck")
		cancel()

		err = os.Remove(unitPath)
		if err != nil {
			return fmt.Errorf("error removing systemd unit: %w", err)
		}

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		_ = cmdExec.Run(ctx, "systemctl", "daemon-reload")
		cancel()
	}

	// remove session autostart entry
	entryPath := filepath.Join(root, autostartPath)
	if _, err := os.Stat(entryPath); !os.IsNotExist(err) {
		err = os.Remove(entryPath)
		if err != nil {
			return fmt.Errorf("error removing autostart entry: %w", err)
		}
	}

	// remove binary last so a failed uninstall can be retried
	binPath := filepath.Join(root, binInstallPath)
	if _, err := os.Stat(binPath); !os.IsNotExist(err) {
		err = os.Remove(binPath)
		if err != nil {
			return fmt.Errorf("error removing binary: %w", err)
		}
	}

	return nil
}
