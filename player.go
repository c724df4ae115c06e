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

// Player is implemented by the host. The interpreter calls it synchronously
// from Write and OnVsync, never concurrently.
type Player interface {
	// Play starts playback. From a stopped or ejected tray this loads and
	// spins up the disc.
	Play()
	Pause()
	Stop()
	Eject()
	Step(backward bool)
	// BeginSearch starts seeking to a frame and must return immediately.
	BeginSearch(frameNumber uint32)
	ChangeAudio(leftEnabled, rightEnabled bool)
	ChangeAudioSquelch(squelched bool)
	// CurrentPictureNumber is only meaningful while playing or paused.
	CurrentPictureNumber() uint32
	// OnExtAckChanged is called on every transition of EXT_ACK'. The line is
	// active low, so active=true means the line went low.
	OnExtAckChanged(active bool)
	OnError(kind ErrorKind, value byte)
}

// VideoController is optionally implemented by a Player that can honor the
// escaped video and character generator commands. Without it those commands
// are accepted silently.
type VideoController interface {
	ChangeVideo(enabled bool)
	ChangeOnScreenDisplay(enabled bool)
}
