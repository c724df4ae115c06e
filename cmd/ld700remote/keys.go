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

package main

import ld700 "github.com/ZaparooProject/go-ld700"

// keymap binds keypad keys to opcodes
var keymap = map[byte]byte{
	'p':  ld700.CmdPlay,
	' ':  ld700.CmdPause,
	'f':  ld700.CmdStepForward,
	'b':  ld700.CmdStepReverse,
	's':  ld700.CmdPrepareSeek,
	'\r': ld700.CmdBeginSeek,
	'\n': ld700.CmdBeginSeek,
	'c':  ld700.CmdClear,
	'j':  ld700.CmdReject,
	'[':  ld700.CmdAudioLeft,
	']':  ld700.CmdAudioRight,
	'=':  ld700.CmdAudioStereo,
	'x':  ld700.CmdEscape,
}

const (
	keyQuit  = 'q'
	keyCtrlC = 0x03
)

// opcodeFor returns the opcode for a key press
func opcodeFor(key byte) (byte, bool) {
	if key >= '0' && key <= '9' {
		return key - '0', true
	}
	op, ok := keymap[key]
	return op, ok
}

func isQuit(key byte) bool {
	return key == keyQuit || key == keyCtrlC
}

const help = "0-9 digits  p play  space pause  f/b step  s seek  enter go  c clear  " +
	"j reject  [ ] = audio  x escape  q quit"
