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

import (
	"errors"
	"fmt"
)

// ErrorKind classifies problems reported through Player.OnError. None of them
// are fatal; the interpreter keeps running.
type ErrorKind int

const (
	// ErrorUnknownCommandByte is a byte that broke framing or an opcode the
	// active table does not know. The value is the offending byte.
	ErrorUnknownCommandByte ErrorKind = iota
	// ErrorUnsupportedCommandByte is a recognized opcode that is not implemented.
	ErrorUnsupportedCommandByte
	// ErrorTooManyDigits reports a digit pushed out of the frame number buffer
	// (only with WithDigitOverflowReporting).
	ErrorTooManyDigits
	// ErrorUnhandledSituation means the player status matched no branch of a
	// command. The value is the Status.
	ErrorUnhandledSituation
	// ErrorCorruptInput is reserved for framing corruption beyond a simple
	// complement mismatch.
	ErrorCorruptInput
)

// Sentinel errors for each ErrorKind
var (
	ErrUnknownCommandByte     = errors.New("unknown command byte")
	ErrUnsupportedCommandByte = errors.New("unsupported command byte")
	ErrTooManyDigits          = errors.New("too many digits")
	ErrUnhandledSituation     = errors.New("unhandled situation")
	ErrCorruptInput           = errors.New("corrupt input")
)

// Construction errors
var (
	ErrNilPlayer      = errors.New("player cannot be nil")
	ErrInvalidAckHold = errors.New("ACK hold must be between 1 and 255 ticks")
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnknownCommandByte:
		return "unknown command byte"
	case ErrorUnsupportedCommandByte:
		return "unsupported command byte"
	case ErrorTooManyDigits:
		return "too many digits"
	case ErrorUnhandledSituation:
		return "unhandled situation"
	case ErrorCorruptInput:
		return "corrupt input"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Err returns the sentinel error for k.
func (k ErrorKind) Err() error {
	switch k {
	case ErrorUnknownCommandByte:
		return ErrUnknownCommandByte
	case ErrorUnsupportedCommandByte:
		return ErrUnsupportedCommandByte
	case ErrorTooManyDigits:
		return ErrTooManyDigits
	case ErrorUnhandledSituation:
		return ErrUnhandledSituation
	case ErrorCorruptInput:
		return ErrCorruptInput
	default:
		return fmt.Errorf("unknown error kind %d", int(k))
	}
}

// ProtocolError is the error form of an OnError report, for hosts that log or
// collect them.
type ProtocolError struct {
	Kind  ErrorKind
	Value byte
}

// NewProtocolError builds a ProtocolError from an OnError report.
func NewProtocolError(kind ErrorKind, value byte) *ProtocolError {
	return &ProtocolError{Kind: kind, Value: value}
}

func (e *ProtocolError) Error() string {
	if e.Kind == ErrorUnhandledSituation {
		return fmt.Sprintf("%s: status %s", e.Kind, Status(e.Value))
	}
	return fmt.Sprintf("%s: 0x%02X", e.Kind, e.Value)
}

func (e *ProtocolError) Unwrap() error {
	return e.Kind.Err()
}
