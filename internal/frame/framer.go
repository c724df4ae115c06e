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

package frame

import (
	"errors"
	"fmt"
)

// State is the position of the framer within the 4-byte frame
type State int

const (
	AwaitingPrefix State = iota
	AwaitingPrefixComplement
	AwaitingOpcode
	AwaitingOpcodeComplement
)

func (s State) String() string {
	switch s {
	case AwaitingPrefix:
		return "awaiting prefix"
	case AwaitingPrefixComplement:
		return "awaiting prefix complement"
	case AwaitingOpcode:
		return "awaiting opcode"
	case AwaitingOpcodeComplement:
		return "awaiting opcode complement"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrMismatch is wrapped by every framing error
var ErrMismatch = errors.New("frame byte mismatch")

// Error describes a byte the framer rejected and where in the frame it arrived.
type Error struct {
	State State
	Byte  byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("unexpected byte 0x%02X while %s", e.Byte, e.State)
}

func (*Error) Unwrap() error {
	return ErrMismatch
}

// Framer validates the prefix/opcode complement pairs of incoming bytes.
// The zero value is ready to use.
type Framer struct {
	state  State
	opcode byte
}

// Submit consumes one byte. It returns the opcode and true when b completes a
// valid frame. On a mismatch it returns a *Error and the framer is back at
// AwaitingPrefix.
func (f *Framer) Submit(b byte) (opcode byte, complete bool, err error) {
	switch f.state {
	case AwaitingPrefix:
		if b != Prefix {
			return 0, false, f.fail(b)
		}
		f.state = AwaitingPrefixComplement
	case AwaitingPrefixComplement:
		if b != PrefixComplement {
			return 0, false, f.fail(b)
		}
		f.state = AwaitingOpcode
	case AwaitingOpcode:
		f.opcode = b
		f.state = AwaitingOpcodeComplement
	default:
		if b != ^f.opcode {
			return 0, false, f.fail(b)
		}
		f.state = AwaitingPrefix
		return f.opcode, true, nil
	}
	return 0, false, nil
}

// Reset forces the framer back to AwaitingPrefix, discarding a partial frame.
func (f *Framer) Reset() {
	f.state = AwaitingPrefix
}

// State returns the current position within the frame.
func (f *Framer) State() State {
	return f.state
}

func (f *Framer) fail(b byte) error {
	err := &Error{State: f.state, Byte: b}
	f.state = AwaitingPrefix
	return err
}
