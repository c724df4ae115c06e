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

// Package sim provides a simulated LD-700 transport that can sit behind an
// ld700.Interpreter when no real disc is available.
package sim

import (
	"fmt"
	"log/slog"
	"sync"

	ld700 "github.com/ZaparooProject/go-ld700"
)

// Default timing in vsync ticks
const (
	DefaultSpinUpTicks     = 60
	DefaultSearchTicks     = 30
	DefaultTicksPerPicture = 2
	DefaultMaxPicture      = 54000 // one side of a CAV disc
)

// AckSink receives EXT_ACK' transitions, normally a GPIO line.
type AckSink interface {
	SetAck(active bool) error
}

// Config holds the timing model of a simulated player
type Config struct {
	SpinUpTicks     int
	SearchTicks     int
	TicksPerPicture int
	MaxPicture      uint32
}

// DefaultConfig returns timing close to a real LD-700
func DefaultConfig() *Config {
	return &Config{
		SpinUpTicks:     DefaultSpinUpTicks,
		SearchTicks:     DefaultSearchTicks,
		TicksPerPicture: DefaultTicksPerPicture,
		MaxPicture:      DefaultMaxPicture,
	}
}

// State is a snapshot of the simulated player
type State struct {
	Status     ld700.Status
	Picture    uint32
	Target     uint32 // search target while searching
	AudioLeft  bool
	AudioRight bool
	Squelched  bool
	Video      bool
	OSD        bool
	Ack        bool
	Errors     int
}

// Player is a simulated LD-700 transport. It implements ld700.Player and
// ld700.VideoController; its clock is driven by OnVsync.
type Player struct {
	config      *Config
	log         *slog.Logger
	sink        AckSink
	state       State
	ticksLeft   int
	pictureTick int
	pendingPlay bool
	mu          sync.Mutex
}

// Option configures a Player
type Option func(*Player)

// WithConfig sets the timing model
func WithConfig(config *Config) Option {
	return func(p *Player) {
		if config != nil {
			c := *config
			p.config = &c
		}
	}
}

// WithLogger sets the logger for transport events and protocol errors
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		p.log = logger
	}
}

// WithAckSink forwards EXT_ACK' transitions to sink
func WithAckSink(sink AckSink) Option {
	return func(p *Player) {
		p.sink = sink
	}
}

// WithStatus sets the initial status. A disc that starts playing or paused
// is at picture 1.
func WithStatus(status ld700.Status) Option {
	return func(p *Player) {
		p.state.Status = status
		if status == ld700.StatusPlaying || status == ld700.StatusPaused {
			p.state.Picture = 1
		}
	}
}

// New creates a stopped player with stereo audio, video and display on
func New(opts ...Option) *Player {
	p := &Player{
		config: DefaultConfig(),
		state: State{
			Status:     ld700.StatusStopped,
			AudioLeft:  true,
			AudioRight: true,
			Video:      true,
			OSD:        true,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = ld700.DefaultLogger()
	}
	if p.config.TicksPerPicture < 1 {
		p.config.TicksPerPicture = 1
	}
	return p
}

// Status returns the current transport status
func (p *Player) Status() ld700.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Status
}

// State returns a snapshot of the player
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Play starts playback, spinning the disc up first when it is stopped.
// During a search the play is queued until the search completes.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state.Status {
	case ld700.StatusStopped, ld700.StatusTrayEjected:
		p.setStatus(ld700.StatusSpinningUp)
		p.ticksLeft = p.config.SpinUpTicks
	case ld700.StatusSearching:
		p.pendingPlay = true
	case ld700.StatusSpinningUp:
	default:
		p.setStatus(ld700.StatusPlaying)
	}
}

// Pause freezes on the current picture. It is ignored unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state.Status {
	case ld700.StatusPlaying:
		p.setStatus(ld700.StatusPaused)
	case ld700.StatusSearching:
		p.pendingPlay = false
	}
}

// Stop spins the disc down
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingPlay = false
	p.state.Picture = 0
	p.setStatus(ld700.StatusStopped)
}

// Eject opens the tray
func (p *Player) Eject() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingPlay = false
	p.state.Picture = 0
	p.setStatus(ld700.StatusTrayEjected)
}

// Step moves one picture and leaves the player paused
func (p *Player) Step(backward bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Status != ld700.StatusPlaying && p.state.Status != ld700.StatusPaused {
		return
	}
	if backward {
		if p.state.Picture > 1 {
			p.state.Picture--
		}
	} else if p.state.Picture < p.config.MaxPicture {
		p.state.Picture++
	}
	p.setStatus(ld700.StatusPaused)
}

// BeginSearch starts a search that completes after Config.SearchTicks
func (p *Player) BeginSearch(frameNumber uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := frameNumber
	if target == 0 {
		target = 1
	}
	if target > p.config.MaxPicture {
		target = p.config.MaxPicture
	}
	p.state.Target = target
	p.pendingPlay = false
	p.ticksLeft = p.config.SearchTicks
	p.setStatus(ld700.StatusSearching)
}

// ChangeAudio enables or disables each channel
func (p *Player) ChangeAudio(leftEnabled, rightEnabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.AudioLeft = leftEnabled
	p.state.AudioRight = rightEnabled
}

// ChangeAudioSquelch mutes or unmutes audio
func (p *Player) ChangeAudioSquelch(squelched bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Squelched = squelched
}

// ChangeVideo blanks or restores the video output
func (p *Player) ChangeVideo(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Video = enabled
}

// ChangeOnScreenDisplay toggles the character generator
func (p *Player) ChangeOnScreenDisplay(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.OSD = enabled
}

// CurrentPictureNumber returns the picture on screen
func (p *Player) CurrentPictureNumber() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Picture
}

// OnExtAckChanged records EXT_ACK' and forwards it to the AckSink
func (p *Player) OnExtAckChanged(active bool) {
	p.mu.Lock()
	p.state.Ack = active
	sink := p.sink
	p.mu.Unlock()

	if sink == nil {
		return
	}
	if err := sink.SetAck(active); err != nil {
		p.log.Error("failed to drive EXT_ACK'", slog.Bool("active", active), slog.Any("error", err))
	}
}

// OnError logs a protocol error
func (p *Player) OnError(kind ld700.ErrorKind, value byte) {
	p.mu.Lock()
	p.state.Errors++
	p.mu.Unlock()
	p.log.Warn("protocol error", slog.Any("error", ld700.NewProtocolError(kind, value)))
}

// OnVsync advances the transport by one field
func (p *Player) OnVsync() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state.Status {
	case ld700.StatusSpinningUp:
		if p.countdown() {
			p.state.Picture = 1
			p.setStatus(ld700.StatusPlaying)
		}
	case ld700.StatusSearching:
		if p.countdown() {
			p.state.Picture = p.state.Target
			if p.pendingPlay {
				p.pendingPlay = false
				p.setStatus(ld700.StatusPlaying)
			} else {
				p.setStatus(ld700.StatusPaused)
			}
		}
	case ld700.StatusPlaying:
		p.pictureTick++
		if p.pictureTick < p.config.TicksPerPicture {
			return
		}
		p.pictureTick = 0
		if p.state.Picture < p.config.MaxPicture {
			p.state.Picture++
		} else {
			p.setStatus(ld700.StatusPaused)
		}
	}
}

func (p *Player) countdown() bool {
	if p.ticksLeft > 0 {
		p.ticksLeft--
	}
	return p.ticksLeft == 0
}

func (p *Player) setStatus(status ld700.Status) {
	if p.state.Status == status {
		return
	}
	p.log.Debug("transport", slog.String("from", p.state.Status.String()), slog.String("to", status.String()))
	p.state.Status = status
	p.pictureTick = 0
}

func (s State) String() string {
	return fmt.Sprintf("%s frame %d", s.Status, s.Picture)
}

var (
	_ ld700.Player          = (*Player)(nil)
	_ ld700.VideoController = (*Player)(nil)
)
