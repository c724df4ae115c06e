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
	"math/rand"
	"testing"

	"github.com/ZaparooProject/go-ld700/internal/frame"
	testutil "github.com/ZaparooProject/go-ld700/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives an interpreter the way a host does: bytes tagged with the
// current status plus vsync ticks.
type harness struct {
	t      *testing.T
	player *MockPlayer
	interp *Interpreter
	status Status
}

func newHarness(t *testing.T, status Status, opts ...Option) *harness {
	t.Helper()
	return newHarnessWithPlayer(t, NewMockPlayer(), status, opts...)
}

func newHarnessWithPlayer(t *testing.T, player Player, status Status, opts ...Option) *harness {
	t.Helper()
	interp, err := New(player, opts...)
	require.NoError(t, err)

	mock := mockOf(player)
	require.Equal(t, []bool{false}, mock.AckChanges(), "New must report EXT_ACK' inactive once")
	mock.Clear()

	return &harness{t: t, player: mock, interp: interp, status: status}
}

func mockOf(p Player) *MockPlayer {
	switch m := p.(type) {
	case *MockPlayer:
		return m
	case *MockVideoPlayer:
		return &m.MockPlayer
	default:
		panic("unexpected player type")
	}
}

func (h *harness) write(bytes ...byte) {
	for _, b := range bytes {
		h.interp.Write(b, h.status)
	}
}

func (h *harness) send(opcodes ...byte) {
	h.write(frame.Append(nil, opcodes...)...)
}

func (h *harness) vsync(n int) {
	for i := 0; i < n; i++ {
		h.interp.OnVsync(h.status)
	}
}

// waitAck runs n vsyncs. EXT_ACK' must stay put for the first n-1 and change
// to want on the last.
func (h *harness) waitAck(want bool, n int) {
	h.t.Helper()
	before := len(h.player.AckChanges())
	h.vsync(n - 1)
	require.Len(h.t, h.player.AckChanges(), before, "EXT_ACK' changed before vsync %d", n)
	h.vsync(1)
	acks := h.player.AckChanges()
	require.Len(h.t, acks, before+1, "EXT_ACK' did not change on vsync %d", n)
	assert.Equal(h.t, want, acks[before])
}

// sendAck sends a command and expects EXT_ACK' to change on the second vsync,
// after the drop-out for the new command.
func (h *harness) sendAck(want bool, opcode byte) {
	h.t.Helper()
	h.send(opcode)
	h.waitAck(want, 2)
}

// sendAckAfter runs n-1 vsyncs, sends a command and expects EXT_ACK' to
// change on the next vsync.
func (h *harness) sendAckAfter(want bool, n int, opcode byte) {
	h.t.Helper()
	before := len(h.player.AckChanges())
	h.vsync(n - 1)
	require.Len(h.t, h.player.AckChanges(), before)
	h.send(opcode)
	h.waitAck(want, 1)
}

// noAck runs n vsyncs and expects EXT_ACK' to stay put.
func (h *harness) noAck(n int) {
	h.t.Helper()
	before := len(h.player.AckChanges())
	h.vsync(n)
	assert.Len(h.t, h.player.AckChanges(), before, "EXT_ACK' changed unexpectedly")
}

func (h *harness) assertNoErrors() {
	h.t.Helper()
	assert.Empty(h.t, h.player.Errors())
}

func (h *harness) searches() []uint32 {
	var out []uint32
	for _, c := range h.player.CallsTo("BeginSearch") {
		out = append(out, c.Args[0].(uint32))
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("NilPlayer", func(t *testing.T) {
		t.Parallel()
		interp, err := New(nil)
		require.ErrorIs(t, err, ErrNilPlayer)
		assert.Nil(t, interp)
	})

	t.Run("InvalidOption", func(t *testing.T) {
		t.Parallel()
		_, err := New(NewMockPlayer(), WithAckHoldTicks(0))
		require.ErrorIs(t, err, ErrInvalidAckHold)
	})

	t.Run("StartsReset", func(t *testing.T) {
		t.Parallel()
		player := NewMockPlayer()
		interp, err := New(player)
		require.NoError(t, err)

		assert.Equal(t, []bool{false}, player.AckChanges())
		assert.Equal(t, AwaitingPrefix, interp.FrameState())
		assert.Equal(t, ModeNormal, interp.EntryMode())
		assert.False(t, interp.Escaped())
		assert.False(t, interp.AckActive())
		assert.Zero(t, interp.AckTicks())
		assert.Zero(t, interp.PendingFrameNumber())
		assert.Equal(t, *DefaultConfig(), interp.Config())
	})
}

func TestFramingErrors(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusError)

	h.write(frame.Prefix + 1) // bad prefix
	h.write(frame.Prefix, 0xA9^0xFF)
	h.write(frame.Prefix, frame.PrefixComplement, 0x00, 0x00)

	assert.Equal(t, []ProtocolError{
		{Kind: ErrorUnknownCommandByte, Value: 0xA9},
		{Kind: ErrorUnknownCommandByte, Value: 0x56},
		{Kind: ErrorUnknownCommandByte, Value: 0x00},
	}, h.player.Errors())
	assert.Empty(t, h.player.TransportCalls())
	assert.Equal(t, AwaitingPrefix, h.interp.FrameState())
}

func TestFrameStateProgress(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	want := []FrameState{AwaitingPrefixComplement, AwaitingOpcode, AwaitingOpcodeComplement, AwaitingPrefix}
	for i, b := range frame.Encode(CmdPause) {
		h.write(b)
		assert.Equal(t, want[i], h.interp.FrameState(), "after byte %d", i)
	}
	assert.Equal(t, 1, h.player.Count("Pause"))
}

func TestRecoveryUsingLeader(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusError)

	h.write(frame.Prefix) // incomplete command
	h.interp.OnNewCommand()
	h.send(CmdEscape, EscDisableAudio)

	h.write(frame.Prefix, frame.PrefixComplement, 0x00) // incomplete command
	h.interp.OnNewCommand()
	h.send(CmdEscape, EscDisableAudio)

	assert.Equal(t, []Call{
		{Method: "ChangeAudioSquelch", Args: []any{true}},
		{Method: "ChangeAudioSquelch", Args: []any{true}},
	}, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestReject(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		wantCall string
		status   Status
	}{
		{name: "FromPlaying", status: StatusPlaying, wantCall: "Stop"},
		{name: "FromPaused", status: StatusPaused, wantCall: "Stop"},
		{name: "FromStopped", status: StatusStopped, wantCall: "Eject"},
		{name: "AlreadyEjected", status: StatusTrayEjected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, tt.status)
			h.send(CmdReject)
			h.noAck(4) // reject never acknowledges

			calls := h.player.TransportCalls()
			if tt.wantCall == "" {
				assert.Empty(t, calls)
			} else {
				require.Len(t, calls, 1)
				assert.Equal(t, tt.wantCall, calls[0].Method)
			}
			h.assertNoErrors()
		})
	}
}

func TestRejectWhileBusyIsUnhandled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusSearching)
	h.send(CmdReject)

	assert.Empty(t, h.player.TransportCalls())
	assert.Equal(t, []ProtocolError{
		{Kind: ErrorUnhandledSituation, Value: byte(StatusSearching)},
	}, h.player.Errors())
}

func TestAcknowledgedCommands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		want   Call
		opcode byte
		status Status
	}{
		{name: "Play", status: StatusPaused, opcode: CmdPlay, want: Call{Method: "Play"}},
		{name: "Pause", status: StatusPlaying, opcode: CmdPause, want: Call{Method: "Pause"}},
		{name: "StepReverse", status: StatusPlaying, opcode: CmdStepReverse, want: Call{Method: "Step", Args: []any{true}}},
		{name: "StepForward", status: StatusPlaying, opcode: CmdStepForward, want: Call{Method: "Step", Args: []any{false}}},
		{name: "AudioLeft", status: StatusPaused, opcode: CmdAudioLeft, want: Call{Method: "ChangeAudio", Args: []any{true, false}}},
		{name: "AudioRight", status: StatusPaused, opcode: CmdAudioRight, want: Call{Method: "ChangeAudio", Args: []any{false, true}}},
		{name: "AudioStereo", status: StatusPaused, opcode: CmdAudioStereo, want: Call{Method: "ChangeAudio", Args: []any{true, true}}},
		{name: "StereoWhileStopped", status: StatusStopped, opcode: CmdAudioStereo, want: Call{Method: "ChangeAudio", Args: []any{true, true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, tt.status)

			// EXT_ACK' goes active about 3ms after the command and stays so
			// for roughly 49ms, three vsyncs
			h.sendAck(true, tt.opcode)
			h.waitAck(false, 3)

			assert.Equal(t, []Call{tt.want}, h.player.TransportCalls())
			h.assertNoErrors()
		})
	}
}

func TestPauseWhilePausedSearchesToCurrentFrame(t *testing.T) {
	t.Parallel()
	player := NewMockPlayer()
	player.Picture = 31337
	h := newHarnessWithPlayer(t, player, StatusPaused)

	h.sendAck(true, CmdPause)

	assert.Zero(t, h.player.Count("Pause"))
	assert.Equal(t, []uint32{31337}, h.searches())
}

func TestSearch(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusError)

	h.send(CmdPrepareSeek, 1, 2, 3, 4, 5, CmdBeginSeek)

	assert.Equal(t, []uint32{12345}, h.searches())
	assert.Equal(t, ModeNormal, h.interp.EntryMode())
	h.assertNoErrors()
}

func TestSearchRemembersFrameNumber(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusError)

	h.send(1) // dropped by the first digit after prepare-seek
	h.send(CmdPrepareSeek, 2, 3, 4, 5, CmdBeginSeek)

	// no new digits: search to the previous frame
	h.send(CmdPrepareSeek, CmdBeginSeek)

	// a new digit clears the previous frame
	h.send(CmdPrepareSeek, 6, CmdBeginSeek)

	assert.Equal(t, []uint32{2345, 2345, 6}, h.searches())
	h.assertNoErrors()
}

func TestSearchDigitEdgeCases(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		opcodes []byte
		want    uint32
	}{
		{
			name:    "ExtraDigitDropsOldest",
			opcodes: []byte{1, CmdPrepareSeek, 2, 3, 4, 5, 6, 7, CmdBeginSeek},
			want:    34567,
		},
		{
			name:    "SecondPrepareDropsDigits",
			opcodes: []byte{CmdPrepareSeek, 1, 2, CmdPrepareSeek, 3, 4, CmdBeginSeek},
			want:    34,
		},
		{
			name:    "EscapedClearInsideSearch",
			opcodes: []byte{CmdPrepareSeek, 1, 2, 3, 4, CmdEscape, CmdClear, 5, CmdBeginSeek},
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StatusPlaying)
			h.send(tt.opcodes...)
			assert.Equal(t, []uint32{tt.want}, h.searches())
			h.assertNoErrors()
		})
	}
}

func TestSearchAfterDiscFlip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	// commands in this capture are spaced out enough for EXT_ACK' to
	// deactivate before the next one
	for _, op := range []byte{CmdAudioStereo, CmdPrepareSeek, 0, 1, 7, 2, 1} {
		h.sendAck(true, op)
		h.waitAck(false, 3)
	}
	h.sendAck(true, CmdBeginSeek)

	assert.Equal(t, []uint32{1721}, h.searches())
	assert.Equal(t, 1, h.player.Count("ChangeAudio"))
	h.assertNoErrors()
}

func TestSearchWithMixedAudioSquelch(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	for _, op := range []byte{CmdPrepareSeek, 1, 2, 3, 4} {
		h.sendAck(true, op)
		h.waitAck(false, 3)
	}

	// escape does not drive EXT_ACK'
	h.send(CmdEscape)
	h.noAck(2)

	h.sendAck(true, EscDisableAudio)
	h.waitAck(false, 3)

	// back on the normal table: digit 5
	h.sendAck(true, 5)
	h.waitAck(false, 3)

	h.sendAck(true, CmdBeginSeek)

	// the player holds EXT_ACK' active while searching
	h.status = StatusSearching
	h.noAck(3)

	assert.Equal(t, []uint32{12345}, h.searches())
	assert.Equal(t, 1, h.player.Count("ChangeAudioSquelch"))
	h.assertNoErrors()
}

func TestSearchWithDoubleClear(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	h.sendAck(true, CmdPrepareSeek)
	h.waitAck(false, 3)
	h.sendAck(true, 1)
	h.waitAck(false, 3)

	h.sendAck(true, CmdClear) // empties the digits
	h.waitAck(false, 3)
	assert.Equal(t, ModeEnteringFrameNumber, h.interp.EntryMode())
	assert.Zero(t, h.interp.PendingFrameNumber())

	h.sendAck(true, CmdClear) // leaves frame number entry
	h.waitAck(false, 3)
	assert.Equal(t, ModeNormal, h.interp.EntryMode())

	// begin-seek is not accepted outside frame number entry
	h.send(CmdBeginSeek)
	h.noAck(4)

	assert.Empty(t, h.searches())
}

func TestStoppedIgnoresSeekCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusStopped)

	h.send(CmdPrepareSeek, 1, 2)
	h.noAck(4)

	assert.Equal(t, ModeNormal, h.interp.EntryMode())
	assert.Zero(t, h.interp.PendingFrameNumber())

	// digits still count once the disc is up
	h.status = StatusPaused
	h.send(CmdPrepareSeek, 4, 2)
	h.status = StatusStopped
	h.send(CmdBeginSeek)
	assert.Empty(t, h.searches())
	assert.Equal(t, uint32(42), h.interp.PendingFrameNumber())
}

func TestRepeatedCommandIgnored(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	h.send(CmdPlay)
	h.noAck(1) // the drop-out is invisible, EXT_ACK' is already inactive

	// a remote control repeating the key, one byte per vsync
	wire := frame.Encode(CmdPlay)
	h.write(wire[0])
	h.waitAck(true, 1)
	for _, b := range wire[1:] {
		h.write(b)
		h.noAck(1)
	}

	// the hold expires about 60ms after the last repeat
	h.waitAck(false, 4)

	assert.Equal(t, 1, h.player.Count("Play"))
	h.assertNoErrors()
}

func TestRepeatedCommandAccepted(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	h.sendAck(true, CmdPlay)
	h.waitAck(false, 3)

	// waited long enough
	h.send(CmdPlay)

	assert.Equal(t, 2, h.player.Count("Play"))
	h.assertNoErrors()
}

func TestRepeatSuppressionUntilExpiry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		opts       []Option
		wantExpiry int
	}{
		// the dropped repeat re-installs the full hold
		{name: "KeyRepeatHold", wantExpiry: 5},
		// the hold keeps counting down from the first command
		{name: "NoKeyRepeatHold", opts: []Option{WithKeyRepeatHold(false)}, wantExpiry: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StatusPaused, tt.opts...)

			h.sendAck(true, CmdPlay)
			h.send(CmdPlay)
			assert.Equal(t, 1, h.player.Count("Play"), "repeat inside the hold must be dropped")

			h.waitAck(false, tt.wantExpiry)

			h.send(CmdPlay)
			assert.Equal(t, 2, h.player.Count("Play"), "repeat after expiry must be accepted")
		})
	}
}

func TestTrayEjectedStereoDoesNotAck(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusTrayEjected)

	h.send(CmdAudioStereo)
	h.noAck(4)

	assert.Equal(t, []Call{{Method: "ChangeAudio", Args: []any{true, true}}}, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestEscapedVideoCommands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		want   Call
		opcode byte
	}{
		{name: "DisableVideo", opcode: EscDisableVideo, want: Call{Method: "ChangeVideo", Args: []any{false}}},
		{name: "EnableVideo", opcode: EscEnableVideo, want: Call{Method: "ChangeVideo", Args: []any{true}}},
		{name: "DisableOSD", opcode: EscDisableOSD, want: Call{Method: "ChangeOnScreenDisplay", Args: []any{false}}},
		{name: "EnableOSD", opcode: EscEnableOSD, want: Call{Method: "ChangeOnScreenDisplay", Args: []any{true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarnessWithPlayer(t, &MockVideoPlayer{}, StatusStopped)

			h.send(CmdEscape)
			h.noAck(3)
			h.sendAck(true, tt.opcode)
			h.waitAck(false, 3)

			assert.Equal(t, []Call{tt.want}, h.player.TransportCalls())
			assert.False(t, h.interp.Escaped())
			h.assertNoErrors()
		})
	}
}

func TestEscapedVideoWithoutController(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	h.send(CmdEscape)
	h.sendAck(true, EscEnableOSD)

	assert.Empty(t, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestEscapeByItselfNeverAcks(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	h.send(CmdEscape)
	h.noAck(3)
	assert.True(t, h.interp.Escaped())

	h.send(CmdEscape)
	h.noAck(3)
	assert.True(t, h.interp.Escaped())

	h.assertNoErrors()
}

func TestEscapeHasNoTimeout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	h.send(CmdEscape)
	h.vsync(15)
	h.send(EscDisableAudio)

	assert.Equal(t, []Call{{Method: "ChangeAudioSquelch", Args: []any{true}}}, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestEscapeGetsCleared(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	h.send(CmdEscape, CmdClear)
	assert.False(t, h.interp.Escaped())

	// now a plain digit, not audio squelch
	h.send(EscDisableAudio)

	assert.Zero(t, h.player.Count("ChangeAudioSquelch"))
	h.assertNoErrors()
}

func TestUnknownOpcodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		opcodes []byte
		want    byte
	}{
		{name: "Normal", opcodes: []byte{0x30}, want: 0x30},
		{name: "Escaped", opcodes: []byte{CmdEscape, CmdPlay}, want: CmdPlay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StatusPlaying)
			h.send(tt.opcodes...)
			h.waitAck(true, 2)

			assert.Equal(t, []ProtocolError{{Kind: ErrorUnknownCommandByte, Value: tt.want}}, h.player.Errors())
			assert.Empty(t, h.player.TransportCalls())
			assert.False(t, h.interp.Escaped())
		})
	}
}

func TestUnknownOpcodeKeepsFrameEntry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		unknown []byte
		want    byte
	}{
		{name: "Normal", unknown: []byte{0x30}, want: 0x30},
		{name: "Escaped", unknown: []byte{CmdEscape, CmdPlay}, want: CmdPlay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StatusPaused)
			h.send(CmdPrepareSeek, 1, 2)
			h.send(tt.unknown...)

			assert.Equal(t, ModeEnteringFrameNumber, h.interp.EntryMode())
			assert.Equal(t, uint32(12), h.interp.PendingFrameNumber())
			assert.False(t, h.interp.Escaped())

			h.send(3)
			assert.Equal(t, uint32(123), h.interp.PendingFrameNumber())
			h.send(CmdBeginSeek)

			assert.Equal(t, []uint32{123}, h.searches())
			assert.Equal(t, []ProtocolError{{Kind: ErrorUnknownCommandByte, Value: tt.want}}, h.player.Errors())
		})
	}
}

func TestBootWithDiscStopped(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusStopped)

	// EXT_ACK' activates because the tray is not ejected
	h.sendAck(true, CmdAudioStereo)

	// the escape's drop-out ends the hold early
	h.sendAckAfter(false, 3, CmdEscape)
	h.sendAck(true, EscDisableVideo)
	h.sendAckAfter(false, 3, CmdEscape)

	h.sendAck(true, EscDisableAudio)
	h.waitAck(false, 3)

	h.sendAck(true, CmdPlay)

	assert.Equal(t, []Call{
		{Method: "ChangeAudio", Args: []any{true, true}},
		{Method: "ChangeAudioSquelch", Args: []any{true}},
		{Method: "Play"},
	}, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestBootWithDiscPlaying(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPlaying)

	// EXT_ACK' is already inactive and escape does not change that
	h.send(CmdEscape)
	h.sendAck(true, EscDisableOSD)
	h.waitAck(false, 3)

	h.sendAck(true, CmdPause)
	h.waitAck(false, 3)

	h.send(CmdEscape)
	h.sendAck(true, EscEnableVideo)
	h.waitAck(false, 3)

	h.send(CmdEscape)
	h.sendAck(true, EscEnableAudio)
	h.waitAck(false, 3)

	assert.Equal(t, []Call{
		{Method: "Pause"},
		{Method: "ChangeAudioSquelch", Args: []any{false}},
	}, h.player.TransportCalls())
	h.assertNoErrors()
}

func TestBusyStatusHoldsAck(t *testing.T) {
	t.Parallel()

	t.Run("Searching", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusSearching)
		h.waitAck(true, 1)
	})

	t.Run("SpinningUp", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusSpinningUp)
		h.waitAck(true, 1)
		h.noAck(1)

		// a command during spin-up neither drops nor extends the line
		h.send(CmdAudioStereo)
		h.noAck(1)
		assert.Equal(t, 1, h.player.Count("ChangeAudio"))
	})

	t.Run("ReleasedWhenDone", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusSearching)
		h.waitAck(true, 1)
		h.noAck(10)
		h.status = StatusPaused
		h.waitAck(false, 1)
	})
}

func TestAckHoldLength(t *testing.T) {
	t.Parallel()
	for _, hold := range []int{2, 4, 6, 10, 255} {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StatusPaused, WithAckHoldTicks(hold))
			h.sendAck(true, CmdPlay)
			h.waitAck(false, hold-1)
		})
	}
}

func TestAckHoldOfOneTickIsSwallowedByDropOut(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused, WithAckHoldTicks(1))
	h.send(CmdPlay)
	h.noAck(5)
	assert.Zero(t, h.interp.AckTicks())
}

func TestAckOnlyReportsTransitions(t *testing.T) {
	t.Parallel()
	statuses := []Status{
		StatusError, StatusSearching, StatusStopped, StatusPlaying,
		StatusPaused, StatusSpinningUp, StatusTrayEjected,
	}
	opcodes := []byte{
		0, 1, 5, 9, CmdReject, CmdPlay, CmdPause, CmdPrepareSeek, CmdBeginSeek,
		CmdClear, CmdAudioRight, CmdAudioStereo, CmdAudioLeft, CmdStepReverse,
		CmdStepForward, CmdEscape, EscDisableVideo, EscEnableAudio, EscEnableOSD, 0x30,
	}
	rng := rand.New(rand.NewSource(700))

	for run := 0; run < 20; run++ {
		player := NewMockPlayer()
		interp, err := New(player)
		require.NoError(t, err)

		for step := 0; step < 500; step++ {
			status := statuses[rng.Intn(len(statuses))]
			switch rng.Intn(4) {
			case 0:
				interp.OnVsync(status)
			case 1:
				interp.Write(byte(rng.Intn(256)), status)
			default:
				for _, b := range frame.Encode(opcodes[rng.Intn(len(opcodes))]) {
					interp.Write(b, status)
				}
			}
			require.LessOrEqual(t, interp.AckTicks(), DefaultAckHoldTicks)
		}

		acks := player.AckChanges()
		require.NotEmpty(t, acks)
		assert.False(t, acks[0])
		for i := 1; i < len(acks); i++ {
			require.NotEqual(t, acks[i-1], acks[i], "run %d: change %d repeats the previous value", run, i)
		}
		assert.Equal(t, acks[len(acks)-1], interp.AckActive())
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	t.Run("ReportsInactive", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusPaused)
		h.sendAck(true, CmdPlay)

		h.interp.Reset()
		assert.Equal(t, []bool{true, false}, h.player.AckChanges())
		assert.Zero(t, h.interp.AckTicks())
	})

	t.Run("AlwaysReports", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusPaused)
		h.interp.Reset()
		assert.Equal(t, []bool{false}, h.player.AckChanges())
	})

	t.Run("ClearsProtocolState", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusPaused)
		h.send(CmdPrepareSeek, 4, 2, CmdEscape)
		h.write(frame.Prefix)

		h.interp.Reset()
		assert.Equal(t, AwaitingPrefix, h.interp.FrameState())
		assert.Equal(t, ModeNormal, h.interp.EntryMode())
		assert.False(t, h.interp.Escaped())
		assert.Zero(t, h.interp.PendingFrameNumber())

		// the last opcode is forgotten, so an immediate repeat is accepted
		h.send(CmdPlay)
		h.send(CmdPlay)
		assert.Equal(t, 1, h.player.Count("Play"))
		h.interp.Reset()
		h.send(CmdPlay)
		assert.Equal(t, 2, h.player.Count("Play"))
	})
}

func TestDigitOverflowReporting(t *testing.T) {
	t.Parallel()

	t.Run("Enabled", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusPaused, WithDigitOverflowReporting(true))
		h.send(CmdPrepareSeek, 1, 2, 3, 4, 5, 6)
		assert.Equal(t, []ProtocolError{{Kind: ErrorTooManyDigits, Value: 1}}, h.player.Errors())
		assert.Equal(t, uint32(23456), h.interp.PendingFrameNumber())
	})

	t.Run("Disabled", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, StatusPaused)
		h.send(CmdPrepareSeek, 1, 2, 3, 4, 5, 6)
		h.assertNoErrors()
	})
}

func TestHalcyonCaptureSequences(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StatusPaused)

	// back to back, no vsyncs: nothing repeats so every command is accepted
	h.write(testutil.Frames(testutil.HalcyonSearchAfterFlip...)...)
	assert.Equal(t, []uint32{1721}, h.searches())
	assert.Equal(t, 1, h.player.Count("ChangeAudio"))

	// a corrupted frame in the middle of the stream is dropped alone
	h.status = StatusPlaying
	h.write(testutil.Corrupt(CmdPlay, 3)...)
	h.send(CmdPause)
	assert.Zero(t, h.player.Count("Play"))
	assert.Equal(t, 1, h.player.Count("Pause"))
	assert.Equal(t, []ProtocolError{{Kind: ErrorUnknownCommandByte, Value: ^CmdPlay ^ 0x01}}, h.player.Errors())
}

func TestEntryModeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "normal", ModeNormal.String())
	assert.Equal(t, "entering frame number", ModeEnteringFrameNumber.String())
	assert.Equal(t, "EntryMode(7)", EntryMode(7).String())
}
