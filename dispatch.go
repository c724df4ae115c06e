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

// ackUpdate is the outcome of a dispatched command for the hold countdown:
// install ticks, or leave the countdown alone.
type ackUpdate struct {
	ticks  int
	change bool
}

var noChange = ackUpdate{}

func (in *Interpreter) acknowledge() ackUpdate {
	return ackUpdate{ticks: in.config.AckHoldTicks, change: true}
}

func (in *Interpreter) dispatch(op byte, status Status) ackUpdate {
	if in.escaped {
		// only a repeated escape keeps the escape table active
		in.escaped = false
		return in.dispatchEscaped(op)
	}
	return in.dispatchNormal(op, status)
}

func (in *Interpreter) dispatchNormal(op byte, status Status) ackUpdate {
	if op <= CmdDigit9 {
		// digits are ignored while the disc is stopped
		if status == StatusStopped {
			return noChange
		}
		in.addDigit(op)
		return in.acknowledge()
	}

	switch op {
	case CmdReject:
		switch status {
		case StatusPlaying, StatusPaused:
			in.player.Stop()
		case StatusStopped:
			in.player.Eject()
		case StatusTrayEjected:
			// already ejected
		default:
			in.player.OnError(ErrorUnhandledSituation, byte(status))
		}
		// reject never acknowledges on real hardware
		return noChange

	case CmdPlay:
		in.player.Play()

	case CmdPause:
		// Pausing while paused blanks the screen briefly. Halcyon relies on it
		// during voice print, so it is shown as a search to the current frame.
		if status == StatusPaused {
			in.player.BeginSearch(in.player.CurrentPictureNumber())
		} else {
			in.player.Pause()
		}

	case CmdPrepareSeek:
		if status == StatusStopped {
			return noChange
		}
		// the previous number survives until the first new digit
		in.mode = ModeEnteringFrameNumber
		in.digits.ArmReset()

	case CmdBeginSeek:
		if in.mode != ModeEnteringFrameNumber || status == StatusStopped {
			return noChange
		}
		in.mode = ModeNormal
		in.player.BeginSearch(in.digits.Value())

	case CmdClear:
		in.clear()

	case CmdAudioRight:
		in.player.ChangeAudio(false, true)

	case CmdAudioStereo:
		in.player.ChangeAudio(true, true)
		if status == StatusTrayEjected {
			return noChange
		}

	case CmdAudioLeft:
		in.player.ChangeAudio(true, false)

	case CmdStepReverse:
		in.player.Step(true)

	case CmdStepForward:
		in.player.Step(false)

	case CmdEscape:
		in.escaped = true
		return noChange

	default:
		in.player.OnError(ErrorUnknownCommandByte, op)
	}

	return in.acknowledge()
}

func (in *Interpreter) dispatchEscaped(op byte) ackUpdate {
	switch op {
	case EscDisableVideo, EscEnableVideo:
		if in.video != nil {
			in.video.ChangeVideo(op == EscEnableVideo)
		}

	case EscDisableOSD, EscEnableOSD:
		if in.video != nil {
			in.video.ChangeOnScreenDisplay(op == EscEnableOSD)
		}

	case EscDisableAudio:
		in.player.ChangeAudioSquelch(true)

	case EscEnableAudio:
		in.player.ChangeAudioSquelch(false)

	case CmdClear:
		in.clear()

	case CmdEscape:
		// repeated escapes are ignored and, like a lone escape, never ACK
		in.escaped = true
		return noChange

	default:
		in.player.OnError(ErrorUnknownCommandByte, op)
	}

	return in.acknowledge()
}

func (in *Interpreter) addDigit(d byte) {
	dropped, overflow := in.digits.Append(d)
	if overflow && in.config.ReportDigitOverflow {
		in.player.OnError(ErrorTooManyDigits, dropped)
	}
}

// clear cancels an escape. While entering a frame number the first clear
// empties the digits and the second leaves entry mode.
func (in *Interpreter) clear() {
	in.escaped = false

	if in.mode != ModeEnteringFrameNumber {
		return
	}
	if in.digits.Len() != 0 {
		in.digits.Clear()
	} else {
		in.mode = ModeNormal
	}
}
