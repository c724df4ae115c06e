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

/*
Package ld700 provides a pure Go interpreter for the serial control protocol of
the Pioneer LD-700 laserdisc player, as driven by the Halcyon and other
Dragon's-Lair-class hardware.

The interpreter turns a stream of command bytes into calls on a Player that
the host implements, and reproduces the player's EXT_ACK' acknowledgement
timing, including the quirks seen on logic analyzer captures of real
hardware: remembered frame numbers, the one-vsync drop-out when a new command
arrives, escape commands that never acknowledge and busy states that hold the
line active.

Wire Format:

Every command is four bytes: 0xA8, 0x57, opcode, ^opcode. A bad prefix or
complement is reported through Player.OnError and the decoder waits for the
next prefix.

Basic Usage:

	player := newMyPlayer() // implements ld700.Player

	interp, err := ld700.New(player)
	if err != nil {
	    log.Fatal(err)
	}

	// for every byte received from the controller
	interp.Write(b, player.Status())

	// once per vertical blank
	interp.OnVsync(player.Status())

	// Or create with custom options
	interp, err = ld700.New(player,
	    ld700.WithLogger(slog.Default()),
	    ld700.WithKeyRepeatHold(false),
	)

Timing:

The acknowledgement countdown is measured in vsync ticks, never wall clock
time. An acknowledged command holds EXT_ACK' active for DefaultAckHoldTicks
ticks; the first tick after a new command always reads inactive. Reject,
escape and commands ignored for the current status do not acknowledge.

Error Handling:

Protocol problems never stop the interpreter. They are reported through
Player.OnError and can be turned into errors for logging:

	func (p *myPlayer) OnError(kind ld700.ErrorKind, value byte) {
	    err := ld700.NewProtocolError(kind, value)
	    if errors.Is(err, ld700.ErrUnknownCommandByte) {
	        // noise on the line
	    }
	}

Thread Safety:

An Interpreter is not thread-safe. The host must serialize Write, OnNewCommand
and OnVsync; package host does this for a serial stream and a vsync ticker.
Use one Interpreter per player.
*/
package ld700
