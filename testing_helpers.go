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
	"sync"
)

// Call is one recorded Player callback
type Call struct {
	Method string
	Args   []any
}

// MockPlayer records every callback it receives, in order. It is safe to
// inspect from another goroutine while an interpreter drives it.
type MockPlayer struct {
	calls   []Call
	acks    []bool
	errs    []ProtocolError
	Picture uint32 // returned by CurrentPictureNumber
	mu      sync.Mutex
}

// NewMockPlayer creates an empty MockPlayer
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

func (m *MockPlayer) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
}

// Play records a Play call
func (m *MockPlayer) Play() { m.record("Play") }

// Pause records a Pause call
func (m *MockPlayer) Pause() { m.record("Pause") }

// Stop records a Stop call
func (m *MockPlayer) Stop() { m.record("Stop") }

// Eject records an Eject call
func (m *MockPlayer) Eject() { m.record("Eject") }

// Step records a Step call
func (m *MockPlayer) Step(backward bool) { m.record("Step", backward) }

// BeginSearch records a BeginSearch call
func (m *MockPlayer) BeginSearch(frameNumber uint32) { m.record("BeginSearch", frameNumber) }

// ChangeAudio records a ChangeAudio call
func (m *MockPlayer) ChangeAudio(leftEnabled, rightEnabled bool) {
	m.record("ChangeAudio", leftEnabled, rightEnabled)
}

// ChangeAudioSquelch records a ChangeAudioSquelch call
func (m *MockPlayer) ChangeAudioSquelch(squelched bool) { m.record("ChangeAudioSquelch", squelched) }

// CurrentPictureNumber returns Picture
func (m *MockPlayer) CurrentPictureNumber() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Picture
}

// OnExtAckChanged records an ACK transition
func (m *MockPlayer) OnExtAckChanged(active bool) {
	m.mu.Lock()
	m.acks = append(m.acks, active)
	m.mu.Unlock()
	m.record("OnExtAckChanged", active)
}

// OnError records an error report
func (m *MockPlayer) OnError(kind ErrorKind, value byte) {
	m.mu.Lock()
	m.errs = append(m.errs, ProtocolError{Kind: kind, Value: value})
	m.mu.Unlock()
	m.record("OnError", kind, value)
}

// Calls returns a copy of every recorded call
func (m *MockPlayer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsTo returns the recorded calls of one method
func (m *MockPlayer) CallsTo(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times method was called
func (m *MockPlayer) Count(method string) int {
	return len(m.CallsTo(method))
}

// TransportCalls returns the calls other than ACK changes and errors
func (m *MockPlayer) TransportCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Method != "OnExtAckChanged" && c.Method != "OnError" {
			out = append(out, c)
		}
	}
	return out
}

// AckChanges returns every reported EXT_ACK' value in order
func (m *MockPlayer) AckChanges() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.acks...)
}

// Errors returns every reported error in order
func (m *MockPlayer) Errors() []ProtocolError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProtocolError(nil), m.errs...)
}

// Clear forgets everything recorded so far
func (m *MockPlayer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.acks = nil
	m.errs = nil
}

// MockVideoPlayer is a MockPlayer that also implements VideoController
type MockVideoPlayer struct {
	MockPlayer
}

// ChangeVideo records a ChangeVideo call
func (m *MockVideoPlayer) ChangeVideo(enabled bool) { m.record("ChangeVideo", enabled) }

// ChangeOnScreenDisplay records a ChangeOnScreenDisplay call
func (m *MockVideoPlayer) ChangeOnScreenDisplay(enabled bool) {
	m.record("ChangeOnScreenDisplay", enabled)
}

var (
	_ Player          = (*MockPlayer)(nil)
	_ VideoController = (*MockVideoPlayer)(nil)
)
