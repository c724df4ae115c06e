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

import "fmt"

// LD-700 opcodes, normal table
const (
	CmdDigit0      byte = 0x00
	CmdDigit9      byte = 0x09
	CmdReject      byte = 0x16
	CmdPlay        byte = 0x17
	CmdPause       byte = 0x18
	CmdPrepareSeek byte = 0x41 // frame/time: start entering a frame number
	CmdBeginSeek   byte = 0x42
	CmdClear       byte = 0x45
	CmdAudioRight  byte = 0x49
	CmdAudioStereo byte = 0x4A
	CmdAudioLeft   byte = 0x4B
	CmdStepReverse byte = 0x50
	CmdStepForward byte = 0x54
	CmdEscape      byte = 0x5F
)

// Opcodes only recognized directly after CmdEscape. CmdClear and CmdEscape
// are also valid there.
const (
	EscDisableVideo byte = 0x02
	EscEnableVideo  byte = 0x03
	EscDisableAudio byte = 0x04 // audio squelch on
	EscEnableAudio  byte = 0x05
	EscDisableOSD   byte = 0x06 // character generator display
	EscEnableOSD    byte = 0x07
)

var commandNames = map[byte]string{
	CmdReject:      "reject",
	CmdPlay:        "play",
	CmdPause:       "pause",
	CmdPrepareSeek: "prepare-seek",
	CmdBeginSeek:   "begin-seek",
	CmdClear:       "clear",
	CmdAudioRight:  "audio-right",
	CmdAudioStereo: "audio-stereo",
	CmdAudioLeft:   "audio-left",
	CmdStepReverse: "step-reverse",
	CmdStepForward: "step-forward",
	CmdEscape:      "escape",
}

var escapedNames = map[byte]string{
	EscDisableVideo: "disable-video",
	EscEnableVideo:  "enable-video",
	EscDisableAudio: "disable-audio",
	EscEnableAudio:  "enable-audio",
	EscDisableOSD:   "disable-osd",
	EscEnableOSD:    "enable-osd",
	CmdClear:        "clear",
	CmdEscape:       "escape",
}

// CommandName returns a readable name for an opcode. escaped selects the
// table used after an escape.
func CommandName(opcode byte, escaped bool) string {
	if escaped {
		if name, ok := escapedNames[opcode]; ok {
			return name
		}
	} else {
		if opcode <= CmdDigit9 {
			return fmt.Sprintf("digit-%d", opcode)
		}
		if name, ok := commandNames[opcode]; ok {
			return name
		}
	}
	return fmt.Sprintf("0x%02X", opcode)
}

// LookupCommand resolves a name produced by CommandName back to its opcode in
// the normal table, falling back to the escape table.
func LookupCommand(name string) (opcode byte, escaped bool, ok bool) {
	for op, n := range commandNames {
		if n == name {
			return op, false, true
		}
	}
	var d byte
	if _, err := fmt.Sscanf(name, "digit-%d", &d); err == nil && d <= CmdDigit9 {
		return d, false, true
	}
	for op, n := range escapedNames {
		if n == name {
			return op, true, true
		}
	}
	return 0, false, false
}
