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

package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	ld700 "github.com/ZaparooProject/go-ld700"
	"github.com/ZaparooProject/go-ld700/host"
)

// flushThreshold is the number of buffered events written per batch
const flushThreshold = 256

// Recorder appends the events of one session. It implements host.Observer
// for the inputs and wraps a Player for the callbacks.
type Recorder struct {
	err     error
	store   *Store
	id      string
	pending []Event
	seq     uint64
	total   int64
	mu      sync.Mutex
	closed  bool
}

var _ host.Observer = (*Recorder)(nil)

func newRecorder(s *Store, id string) *Recorder {
	return &Recorder{
		store:   s,
		id:      id,
		pending: make([]Event, 0, flushThreshold),
	}
}

// ID returns the session ID
func (r *Recorder) ID() string {
	return r.id
}

// ObserveByte records a byte about to be written to the interpreter
func (r *Recorder) ObserveByte(b byte, status ld700.Status) {
	r.add(Event{Kind: KindByte, Value: b, Status: uint8(status)})
}

// ObserveVsync records a vsync tick
func (r *Recorder) ObserveVsync(status ld700.Status) {
	r.add(Event{Kind: KindVsync, Status: uint8(status)})
}

// ObserveLeader records a leader pulse
func (r *Recorder) ObserveLeader() {
	r.add(Event{Kind: KindLeader})
}

func (r *Recorder) callback(method string, args ...any) {
	r.add(Event{Kind: KindCallback, Call: FormatCall(ld700.Call{Method: method, Args: args})})
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.seq++
	e.Seq = r.seq
	e.SessionID = r.id
	e.At = time.Now()
	r.pending = append(r.pending, e)
	if len(r.pending) >= flushThreshold {
		r.flushLocked()
	}
}

// Flush writes buffered events. It returns the first write error seen by
// this recorder, if any.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return r.err
}

func (r *Recorder) flushLocked() {
	if len(r.pending) == 0 {
		return
	}
	if err := r.store.db.CreateInBatches(&r.pending, flushThreshold).Error; err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("failed to write capture events: %w", err)
		}
		r.store.log.Warn("capture events dropped",
			slog.String("session", r.id),
			slog.Int("count", len(r.pending)),
			slog.Any("error", err))
	} else {
		r.total += int64(len(r.pending))
	}
	r.pending = r.pending[:0]
}

// Close flushes and marks the session finished. Further events are ignored.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.flushLocked()
	r.closed = true

	now := time.Now()
	err := r.store.db.Model(&Session{}).Where("id = ?", r.id).
		Updates(map[string]any{"ended_at": now, "event_count": r.total}).Error
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("failed to finish capture session: %w", err)
	}
	r.store.log.Info("capture finished", slog.String("session", r.id), slog.Int64("events", r.total))
	return r.err
}

// Wrap returns a Player that records every callback before forwarding it to
// p. If p implements ld700.VideoController, so does the result.
func (r *Recorder) Wrap(p ld700.Player) ld700.Player {
	rp := &recordingPlayer{next: p, rec: r}
	if vc, ok := p.(ld700.VideoController); ok {
		return &recordingVideoPlayer{recordingPlayer: rp, video: vc}
	}
	return rp
}

type recordingPlayer struct {
	next ld700.Player
	rec  *Recorder
}

func (p *recordingPlayer) Play() {
	p.rec.callback("Play")
	p.next.Play()
}

func (p *recordingPlayer) Pause() {
	p.rec.callback("Pause")
	p.next.Pause()
}

func (p *recordingPlayer) Stop() {
	p.rec.callback("Stop")
	p.next.Stop()
}

func (p *recordingPlayer) Eject() {
	p.rec.callback("Eject")
	p.next.Eject()
}

func (p *recordingPlayer) Step(backward bool) {
	p.rec.callback("Step", backward)
	p.next.Step(backward)
}

func (p *recordingPlayer) BeginSearch(frameNumber uint32) {
	p.rec.callback("BeginSearch", frameNumber)
	p.next.BeginSearch(frameNumber)
}

func (p *recordingPlayer) ChangeAudio(leftEnabled, rightEnabled bool) {
	p.rec.callback("ChangeAudio", leftEnabled, rightEnabled)
	p.next.ChangeAudio(leftEnabled, rightEnabled)
}

func (p *recordingPlayer) ChangeAudioSquelch(squelched bool) {
	p.rec.callback("ChangeAudioSquelch", squelched)
	p.next.ChangeAudioSquelch(squelched)
}

// CurrentPictureNumber is a query and is not recorded
func (p *recordingPlayer) CurrentPictureNumber() uint32 {
	return p.next.CurrentPictureNumber()
}

func (p *recordingPlayer) OnExtAckChanged(active bool) {
	p.rec.callback("OnExtAckChanged", active)
	p.next.OnExtAckChanged(active)
}

func (p *recordingPlayer) OnError(kind ld700.ErrorKind, value byte) {
	p.rec.callback("OnError", kind, value)
	p.next.OnError(kind, value)
}

type recordingVideoPlayer struct {
	*recordingPlayer
	video ld700.VideoController
}

func (p *recordingVideoPlayer) ChangeVideo(enabled bool) {
	p.rec.callback("ChangeVideo", enabled)
	p.video.ChangeVideo(enabled)
}

func (p *recordingVideoPlayer) ChangeOnScreenDisplay(enabled bool) {
	p.rec.callback("ChangeOnScreenDisplay", enabled)
	p.video.ChangeOnScreenDisplay(enabled)
}
