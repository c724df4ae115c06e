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

// ackController derives EXT_ACK' from the hold countdown. It only notifies on
// transitions.
type ackController struct {
	notify func(active bool)
	ticks  int
	fresh  bool // a command was accepted since the last tick
	active bool
}

// reset drives the line to inactive and always notifies, so the host starts
// from a known state.
func (a *ackController) reset(notify func(active bool)) {
	a.notify = notify
	a.ticks = 0
	a.fresh = false
	a.active = true
	a.set(false)
}

func (a *ackController) set(active bool) {
	if a.active == active {
		return
	}
	a.active = active
	a.notify(active)
}

// tick advances one vsync. A fresh command forces a one-tick drop-out, and a
// busy player (seeking, spinning up) forces the line active over everything.
func (a *ackController) tick(status Status) {
	active := a.ticks != 0
	if a.fresh {
		a.fresh = false
		active = false
	}
	if status.Busy() {
		active = true
	}
	a.set(active)

	if a.ticks != 0 {
		a.ticks--
	}
}

func (a *ackController) holding() bool {
	return a.ticks != 0
}

func (a *ackController) hold(ticks int) {
	a.ticks = ticks
}

func (a *ackController) commandReceived() {
	a.fresh = true
}
