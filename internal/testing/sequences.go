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

// Package testing provides wire sequences for LD-700 tests
package testing

import "github.com/ZaparooProject/go-ld700/internal/frame"

// Frames returns the wire bytes for a series of opcodes
func Frames(opcodes ...byte) []byte {
	return frame.Append(nil, opcodes...)
}

// Command sequences taken from logic analyzer captures of a Halcyon talking to
// a real LD-700. Opcodes only; wrap them with Frames for the wire form.
var (
	// HalcyonSearchAfterFlip seeks to frame 1721 after a disc flip. Halcyon
	// starts most searches with a stereo command.
	HalcyonSearchAfterFlip = []byte{0x4A, 0x41, 0x00, 0x01, 0x07, 0x02, 0x01, 0x42}

	// HalcyonBootStopped is sent at power-on with the disc stopped: stereo,
	// video off, audio squelch, then play.
	HalcyonBootStopped = []byte{0x4A, 0x5F, 0x02, 0x5F, 0x04, 0x17}

	// HalcyonBootPlaying is sent at power-on with the disc already playing.
	HalcyonBootPlaying = []byte{0x5F, 0x06, 0x18, 0x5F, 0x03, 0x5F, 0x05}
)

// Corrupt returns the frame for opcode with the byte at position inverted in
// its lowest bit.
func Corrupt(opcode byte, position int) []byte {
	f := frame.Encode(opcode)
	f[position] ^= 0x01
	return f[:]
}
