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

//go:build linux

// Package linuxinput wraps a uinput virtual keyboard. The power watcher
// taps a key on screensaver unblank so the X session registers activity
// and does not immediately blank again.
package linuxinput

import (
	"fmt"
	"time"

	"github.com/bendahl/uinput"
)

const (
	DeviceName     = "Cyberdeck"
	DefaultTimeout = 40 * time.Millisecond
	uinputDev      = "/dev/uinput"
)

// KeyWake is the key tapped to signal activity. Left shift is used because
// it is a modifier with no effect on its own.
const KeyWake = uinput.KeyLeftshift

type Keyboard struct {
	Device uinput.Keyboard
	Delay  time.Duration
}

// NewKeyboard returns a uinput virtual keyboard device. It takes a delay
// duration which is used between press and release to avoid overloading the
// OS or user applications. This device must be closed when the service stops.
func NewKeyboard(delay time.Duration) (Keyboard, error) {
	kbd, err := uinput.CreateKeyboard(uinputDev, []byte(DeviceName))
	if err != nil {
		return Keyboard{}, fmt.Errorf("failed to create keyboard device: %w", err)
	}
	return Keyboard{
		Device: kbd,
		Delay:  delay,
	}, nil
}

func (k *Keyboard) Close() error {
	if err := k.Device.Close(); err != nil {
		return fmt.Errorf("failed to close keyboard device: %w", err)
	}
	return nil
}

func (k *Keyboard) Press(key int) error {
	err := k.Device.KeyDown(key)
	if err != nil {
		return fmt.Errorf("failed to press key down: %w", err)
	}

	time.Sleep(k.Delay)

	if err := k.Device.KeyUp(key); err != nil {
		return fmt.Errorf("failed to release key: %w", err)
	}
	return nil
}
