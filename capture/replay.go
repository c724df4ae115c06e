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
	"errors"
	"fmt"

	ld700 "github.com/ZaparooProject/go-ld700"
)

// ErrUnknownEvent is returned by Replay for an event kind it cannot feed
var ErrUnknownEvent = errors.New("unknown capture event kind")

// Replay feeds the recorded inputs to interp in order. Callback events are
// skipped; compare them against the new player's calls to check a change in
// behavior. It returns the number of inputs replayed.
func Replay(events []Event, interp *ld700.Interpreter) (int, error) {
	n := 0
	for i := range events {
		e := &events[i]
		switch e.Kind {
		case KindByte:
			interp.Write(e.Value, e.PlayerStatus())
		case KindVsync:
			interp.OnVsync(e.PlayerStatus())
		case KindLeader:
			interp.OnNewCommand()
		case KindCallback:
			continue
		default:
			return n, fmt.Errorf("%w: %q at seq %d", ErrUnknownEvent, e.Kind, e.Seq)
		}
		n++
	}
	return n, nil
}
