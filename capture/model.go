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

package capture

import (
	"fmt"
	"strings"
	"time"

	ld700 "github.com/ZaparooProject/go-ld700"
)

// Event kinds
const (
	KindByte     = "byte"
	KindVsync    = "vsync"
	KindLeader   = "leader"
	KindCallback = "callback"
)

// Session is one recorded run
type Session struct {
	StartedAt   time.Time
	EndedAt     *time.Time
	ID          string `gorm:"primaryKey;size:36"`
	Description string
	EventCount  int64
}

// Event is a single input fed to the interpreter or a callback it made
type Event struct {
	At        time.Time
	SessionID string `gorm:"index:idx_session_seq,priority:1;size:36;not null"`
	Kind      string `gorm:"size:16;not null"`
	Call      string // formatted callback, KindCallback only
	ID        uint   `gorm:"primaryKey"`
	Seq       uint64 `gorm:"index:idx_session_seq,priority:2"`
	Value     uint8  // the byte, KindByte only
	Status    uint8  // player status seen with the input
}

// PlayerStatus returns the status recorded with a byte or vsync
func (e *Event) PlayerStatus() ld700.Status {
	return ld700.Status(e.Status)
}

func (e *Event) String() string {
	switch e.Kind {
	case KindByte:
		return fmt.Sprintf("#%d byte 0x%02X %s", e.Seq, e.Value, e.PlayerStatus())
	case KindVsync:
		return fmt.Sprintf("#%d vsync %s", e.Seq, e.PlayerStatus())
	case KindCallback:
		return fmt.Sprintf("#%d %s", e.Seq, e.Call)
	default:
		return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
	}
}

// FormatCall renders a player callback the way it is stored, e.g.
// "BeginSearch(1721)" or "ChangeAudio(true, false)".
func FormatCall(c ld700.Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Method + "(" + strings.Join(args, ", ") + ")"
}

// Callbacks returns the formatted callbacks of a recorded event list
func Callbacks(events []Event) []string {
	var out []string
	for _, e := range events {
		if e.Kind == KindCallback {
			out = append(out, e.Call)
		}
	}
	return out
}
