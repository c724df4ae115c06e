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

package sim

import (
	"errors"
	"sync"
	"testing"

	ld700 "github.com/ZaparooProject/go-ld700"
	"github.com/ZaparooProject/go-ld700/internal/frame"
	testutil "github.com/ZaparooProject/go-ld700/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	err    error
	values []bool
	mu     sync.Mutex
}

func (s *recordingSink) SetAck(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, active)
	return s.err
}

func vsyncs(p *Player, n int) {
	for i := 0; i < n; i++ {
		p.OnVsync()
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	p := New()
	state := p.State()

	assert.Equal(t, ld700.StatusStopped, state.Status)
	assert.Zero(t, state.Picture)
	assert.True(t, state.AudioLeft)
	assert.True(t, state.AudioRight)
	assert.True(t, state.Video)
	assert.True(t, state.OSD)
	assert.False(t, state.Squelched)
}

func TestSpinUp(t *testing.T) {
	t.Parallel()
	p := New(WithConfig(&Config{SpinUpTicks: 5, SearchTicks: 3, TicksPerPicture: 2, MaxPicture: 100}))

	p.Play()
	assert.Equal(t, ld700.StatusSpinningUp, p.Status())

	// pause is ignored while the disc spins up
	p.Pause()
	assert.Equal(t, ld700.StatusSpinningUp, p.Status())

	vsyncs(p, 4)
	assert.Equal(t, ld700.StatusSpinningUp, p.Status())
	p.OnVsync()
	assert.Equal(t, ld700.StatusPlaying, p.Status())
	assert.Equal(t, uint32(1), p.CurrentPictureNumber())
}

func TestPlayingAdvancesPictures(t *testing.T) {
	t.Parallel()
	p := New(WithStatus(ld700.StatusPlaying), WithConfig(&Config{TicksPerPicture: 2, MaxPicture: 4}))

	vsyncs(p, 5)
	assert.Equal(t, uint32(3), p.CurrentPictureNumber())

	// the player stops advancing at the end of the disc
	vsyncs(p, 10)
	assert.Equal(t, uint32(4), p.CurrentPictureNumber())
	assert.Equal(t, ld700.StatusPaused, p.Status())
}

func TestSearch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		playDuring bool
		frame      uint32
		want       uint32
		wantStatus ld700.Status
	}{
		{name: "ends paused", frame: 1721, want: 1721, wantStatus: ld700.StatusPaused},
		{name: "queued play", frame: 1721, playDuring: true, want: 1721, wantStatus: ld700.StatusPlaying},
		{name: "frame zero", frame: 0, want: 1, wantStatus: ld700.StatusPaused},
		{name: "past the end", frame: 99999, want: DefaultMaxPicture, wantStatus: ld700.StatusPaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := New(WithStatus(ld700.StatusPaused))

			p.BeginSearch(tt.frame)
			assert.Equal(t, ld700.StatusSearching, p.Status())
			if tt.playDuring {
				p.Play()
				assert.Equal(t, ld700.StatusSearching, p.Status())
			}

			vsyncs(p, DefaultSearchTicks-1)
			assert.Equal(t, ld700.StatusSearching, p.Status())
			p.OnVsync()

			assert.Equal(t, tt.wantStatus, p.Status())
			assert.Equal(t, tt.want, p.CurrentPictureNumber())
		})
	}
}

func TestStep(t *testing.T) {
	t.Parallel()
	p := New(WithStatus(ld700.StatusPlaying))

	p.Step(false)
	assert.Equal(t, ld700.StatusPaused, p.Status())
	assert.Equal(t, uint32(2), p.CurrentPictureNumber())

	p.Step(true)
	p.Step(true)
	assert.Equal(t, uint32(1), p.CurrentPictureNumber())

	stopped := New()
	stopped.Step(false)
	assert.Equal(t, ld700.StatusStopped, stopped.Status())
}

func TestStopAndEject(t *testing.T) {
	t.Parallel()
	p := New(WithStatus(ld700.StatusPlaying))

	p.Stop()
	assert.Equal(t, ld700.StatusStopped, p.Status())
	assert.Zero(t, p.CurrentPictureNumber())

	p.Eject()
	assert.Equal(t, ld700.StatusTrayEjected, p.Status())

	p.Play()
	assert.Equal(t, ld700.StatusSpinningUp, p.Status())
}

func TestAckSink(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := New(WithAckSink(sink))

	p.OnExtAckChanged(true)
	p.OnExtAckChanged(false)
	assert.Equal(t, []bool{true, false}, sink.values)
	assert.False(t, p.State().Ack)

	// a failing sink is logged, not fatal
	sink.err = errors.New("line busy")
	p.OnExtAckChanged(true)
	assert.True(t, p.State().Ack)
}

func TestOnErrorCounts(t *testing.T) {
	t.Parallel()
	p := New()
	p.OnError(ld700.ErrorUnknownCommandByte, 0x30)
	p.OnError(ld700.ErrorUnhandledSituation, byte(ld700.StatusSearching))
	assert.Equal(t, 2, p.State().Errors)
}

// drive feeds wire bytes and vsyncs the way a host session does
type drive struct {
	interp *ld700.Interpreter
	player *Player
}

func (d drive) send(opcodes ...byte) {
	for _, b := range frame.Append(nil, opcodes...) {
		d.interp.Write(b, d.player.Status())
	}
}

func (d drive) vsync(n int) {
	for i := 0; i < n; i++ {
		d.interp.OnVsync(d.player.Status())
		d.player.OnVsync()
	}
}

func TestWithInterpreter(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := New(WithAckSink(sink))
	interp, err := ld700.New(p)
	require.NoError(t, err)
	d := drive{interp: interp, player: p}

	d.send(testutil.HalcyonBootStopped...)
	state := p.State()
	assert.Equal(t, ld700.StatusSpinningUp, state.Status)
	assert.False(t, state.Video)
	assert.True(t, state.Squelched)

	// EXT_ACK' is held for the whole spin-up and released after it
	d.vsync(1)
	assert.True(t, p.State().Ack)
	d.vsync(DefaultSpinUpTicks - 1)
	assert.Equal(t, ld700.StatusPlaying, p.Status())
	assert.True(t, p.State().Ack)
	d.vsync(1)
	assert.False(t, p.State().Ack)

	d.send(testutil.HalcyonSearchAfterFlip...)
	assert.Equal(t, ld700.StatusSearching, p.Status())
	d.vsync(DefaultSearchTicks)
	assert.Equal(t, ld700.StatusPaused, p.Status())
	assert.Equal(t, uint32(1721), p.CurrentPictureNumber())

	d.vsync(10)
	d.send(ld700.CmdPlay)
	d.vsync(10)
	assert.Equal(t, uint32(1726), p.CurrentPictureNumber())

	assert.Equal(t, []bool{false, true, false, true, false, true}, sink.values[:6])
	assert.Zero(t, p.State().Errors)
}
