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
	"fmt"
	"log/slog"

	"github.com/ZaparooProject/go-ld700/internal/digits"
	"github.com/ZaparooProject/go-ld700/internal/frame"
)

// FrameState is the position of the decoder within a 4-byte command frame
type FrameState = frame.State

// Frame positions
const (
	AwaitingPrefix           = frame.AwaitingPrefix
	AwaitingPrefixComplement = frame.AwaitingPrefixComplement
	AwaitingOpcode           = frame.AwaitingOpcode
	AwaitingOpcodeComplement = frame.AwaitingOpcodeComplement
)

// EntryMode tells whether digits are being collected for a seek
type EntryMode int

const (
	ModeNormal EntryMode = iota
	ModeEnteringFrameNumber
)

func (m EntryMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeEnteringFrameNumber:
		return "entering frame number"
	default:
		return fmt.Sprintf("EntryMode(%d)", int(m))
	}
}

// noOpcode is outside the byte range so the first command is never a repeat
const noOpcode = -1

// Interpreter decodes the LD-700 command stream for one player.
//
// Thread Safety: Interpreter is NOT thread-safe. Write, OnNewCommand and
// OnVsync must be serialized by the host; the host package does this for
// a byte stream plus a vsync ticker.
type Interpreter struct {
	player     Player
	video      VideoController
	config     *Config
	log        *slog.Logger
	framer     frame.Framer
	digits     digits.Buffer
	ack        ackController
	mode       EntryMode
	lastOpcode int
	escaped    bool
}

// New creates an interpreter bound to player and resets it. The reset
// immediately reports EXT_ACK' inactive through player.OnExtAckChanged.
func New(player Player, opts ...Option) (*Interpreter, error) {
	if player == nil {
		return nil, ErrNilPlayer
	}

	in := &Interpreter{
		player: player,
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(in); err != nil {
			return nil, fmt.Errorf("failed to apply interpreter option: %w", err)
		}
	}

	in.log = in.config.Logger
	if in.log == nil {
		in.log = DefaultLogger()
	}
	if vc, ok := player.(VideoController); ok {
		in.video = vc
	}

	in.Reset()
	return in, nil
}

// Reset returns every piece of protocol state to power-on defaults.
func (in *Interpreter) Reset() {
	in.framer.Reset()
	in.digits.Reset()
	in.mode = ModeNormal
	in.escaped = false
	in.lastOpcode = noOpcode
	in.ack.reset(in.player.OnExtAckChanged)
}

// OnNewCommand tells the interpreter a leader pulse was seen and a new frame
// starts with the next byte. Optional; it only speeds up recovery from noise.
func (in *Interpreter) OnNewCommand() {
	if in.framer.State() != AwaitingPrefix {
		in.log.Debug("leader abandons partial frame", slog.String("state", in.framer.State().String()))
	}
	in.framer.Reset()
}

// Write submits one received byte along with the current player status.
func (in *Interpreter) Write(b byte, status Status) {
	op, complete, err := in.framer.Submit(b)
	if err != nil {
		in.log.Debug("frame error", slog.Any("error", err))
		in.player.OnError(ErrorUnknownCommandByte, b)
		return
	}
	if !complete {
		in.holdForRepeat()
		return
	}

	// a remote control repeats a held key; drop repeats while ACK is held
	if int(op) == in.lastOpcode && in.ack.holding() {
		in.log.Debug("repeated command dropped", slog.String("command", CommandName(op, in.escaped)))
		in.holdForRepeat()
		return
	}

	in.ack.commandReceived()
	in.log.Debug("command",
		slog.String("command", CommandName(op, in.escaped)),
		slog.String("status", status.String()))

	update := in.dispatch(op, status)
	in.lastOpcode = int(op)
	if update.change {
		in.ack.hold(update.ticks)
	}
}

// OnVsync advances the ACK timing by one vertical blank.
func (in *Interpreter) OnVsync(status Status) {
	in.ack.tick(status)
}

func (in *Interpreter) holdForRepeat() {
	if in.config.KeyRepeatHold && in.ack.holding() {
		in.ack.hold(in.config.AckHoldTicks)
	}
}

// FrameState returns the decoder position within the current frame.
func (in *Interpreter) FrameState() FrameState {
	return in.framer.State()
}

// EntryMode returns whether a frame number is being entered.
func (in *Interpreter) EntryMode() EntryMode {
	return in.mode
}

// Escaped reports whether the next opcode uses the escape table.
func (in *Interpreter) Escaped() bool {
	return in.escaped
}

// AckActive returns the EXT_ACK' value last reported to the player.
func (in *Interpreter) AckActive() bool {
	return in.ack.active
}

// AckTicks returns the remaining hold countdown.
func (in *Interpreter) AckTicks() int {
	return in.ack.ticks
}

// PendingFrameNumber returns the frame number a begin-seek would search to.
func (in *Interpreter) PendingFrameNumber() uint32 {
	return in.digits.Value()
}

// Config returns a copy of the interpreter configuration.
func (in *Interpreter) Config() Config {
	return *in.config
}
