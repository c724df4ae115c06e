// go-ld700
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ld700.
//
// go-ld700 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ld700 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ld700; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package ld700

import (
	"fmt"
	"strings"
)

// Status is the player state the host reports with every byte and tick
type Status uint8

const (
	StatusError Status = iota
	StatusSearching
	StatusStopped
	StatusPlaying
	StatusPaused
	StatusSpinningUp
	StatusTrayEjected
)

var statusNames = [...]string{
	StatusError:       "error",
	StatusSearching:   "searching",
	StatusStopped:     "stopped",
	StatusPlaying:     "playing",
	StatusPaused:      "paused",
	StatusSpinningUp:  "spinning-up",
	StatusTrayEjected: "tray-ejected",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Busy reports whether the player holds EXT_ACK' active on its own
// (seeking or spinning up).
func (s Status) Busy() bool {
	return s == StatusSearching || s == StatusSpinningUp
}

// ParseStatus parses the names produced by Status.String, case-insensitively.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusError, fmt.Errorf("unknown player status %q", name)
}
