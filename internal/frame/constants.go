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

// Package frame provides frame decoding and protocol constants for LD-700 communication
package frame

// Frame markers
const (
	Prefix           = 0xA8 // First byte of every command frame
	PrefixComplement = 0x57 // Second byte, bitwise complement of the prefix
)

// Frame size
const (
	Length = 4 // prefix, ~prefix, opcode, ~opcode
)

// Encode returns the four wire bytes that carry opcode.
func Encode(opcode byte) [Length]byte {
	return [Length]byte{Prefix, PrefixComplement, opcode, ^opcode}
}

// Append appends the frames for each opcode to dst.
func Append(dst []byte, opcodes ...byte) []byte {
	for _, op := range opcodes {
		f := Encode(op)
		dst = append(dst, f[:]...)
	}
	return dst
}
