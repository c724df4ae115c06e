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

// Package digits holds the frame number entry buffer
package digits

// Capacity is the number of digits the player keeps while a frame number is entered
const Capacity = 5

// Buffer is a fixed-capacity ring of decimal digits. Appending past Capacity
// drops the oldest digit. The zero value is an empty, disarmed buffer.
type Buffer struct {
	digits [Capacity]uint8
	start  int
	count  int
	armed  bool
}

// Append adds a digit at the newest end. If a reset was armed the buffer is
// emptied first. It reports the digit pushed out by an overflow, if any.
func (b *Buffer) Append(d uint8) (dropped uint8, overflow bool) {
	if b.armed {
		b.Clear()
		b.armed = false
	}

	if b.count == Capacity {
		dropped = b.digits[b.start]
		overflow = true
		b.start = (b.start + 1) % Capacity
		b.count--
	}

	b.digits[(b.start+b.count)%Capacity] = d
	b.count++
	return dropped, overflow
}

// Value folds the digits oldest to newest as a base-10 number. An empty
// buffer is 0.
func (b *Buffer) Value() uint32 {
	var v uint32
	for i := 0; i < b.count; i++ {
		v = v*10 + uint32(b.digits[(b.start+i)%Capacity])
	}
	return v
}

// ArmReset makes the next Append discard the current contents. Until then the
// previous number is kept, so a seek with no new digits reuses it.
func (b *Buffer) ArmReset() {
	b.armed = true
}

// Armed reports whether the next Append will clear the buffer.
func (b *Buffer) Armed() bool {
	return b.armed
}

// Clear empties the buffer without touching the armed flag.
func (b *Buffer) Clear() {
	b.start = 0
	b.count = 0
}

// Len returns the number of stored digits.
func (b *Buffer) Len() int {
	return b.count
}

// Digits returns the stored digits oldest first.
func (b *Buffer) Digits() []uint8 {
	out := make([]uint8, b.count)
	for i := range out {
		out[i] = b.digits[(b.start+i)%Capacity]
	}
	return out
}

// Reset returns the buffer to its zero state.
func (b *Buffer) Reset() {
	*b = Buffer{}
}
