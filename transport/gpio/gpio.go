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

// Package gpio drives the LD-700 handshake lines from a single board computer:
// the active-low EXT_ACK' output and edge inputs for the command leader pulse
// and the video vsync.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultPollInterval bounds each edge wait so cancellation is noticed
const DefaultPollInterval = 50 * time.Millisecond

// ErrPinNotFound is returned when no GPIO pin has the requested name
var ErrPinNotFound = errors.New("GPIO pin not found")

var hostInit = sync.OnceValue(func() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph host: %w", err)
	}
	return nil
})

func lookup(name string) (gpio.PinIO, error) {
	if err := hostInit(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return pin, nil
}

// AckLine is the EXT_ACK' output. The line is active low and idles high.
type AckLine struct {
	pin    gpio.PinOut
	mu     sync.Mutex
	active bool
}

// OpenAckLine configures the named pin as EXT_ACK' and drives it inactive
func OpenAckLine(name string) (*AckLine, error) {
	pin, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return NewAckLine(pin)
}

// NewAckLine wraps an already resolved pin
func NewAckLine(pin gpio.PinOut) (*AckLine, error) {
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to configure %s as output: %w", pin, err)
	}
	return &AckLine{pin: pin}, nil
}

// SetAck drives the line low when active
func (a *AckLine) SetAck(active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	level := gpio.High
	if active {
		level = gpio.Low
	}
	if err := a.pin.Out(level); err != nil {
		return fmt.Errorf("failed to drive %s: %w", a.pin, err)
	}
	a.active = active
	return nil
}

// Active returns the last value set
func (a *AckLine) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Close releases the line inactive
func (a *AckLine) Close() error {
	return a.SetAck(false)
}

// EdgeInput waits for falling edges on an input pin
type EdgeInput struct {
	pin  gpio.PinIn
	poll time.Duration
}

// OpenLeaderInput watches the controller's leader pulse, which precedes
// every command frame
func OpenLeaderInput(name string) (*EdgeInput, error) {
	return openEdgeInput(name)
}

// OpenVsyncInput watches the composite sync separator's vertical sync output
func OpenVsyncInput(name string) (*EdgeInput, error) {
	return openEdgeInput(name)
}

func openEdgeInput(name string) (*EdgeInput, error) {
	pin, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return NewEdgeInput(pin)
}

// NewEdgeInput configures pin with a pull-up and falling edge detection
func NewEdgeInput(pin gpio.PinIn) (*EdgeInput, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as input: %w", pin, err)
	}
	return &EdgeInput{pin: pin, poll: DefaultPollInterval}, nil
}

// WaitEdge blocks until the next falling edge or until ctx is done
func (e *EdgeInput) WaitEdge(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.pin.WaitForEdge(e.poll) {
			return nil
		}
	}
}

// WaitLeader blocks until the next leader pulse
func (e *EdgeInput) WaitLeader(ctx context.Context) error {
	return e.WaitEdge(ctx)
}

// Ticks delivers a time for every edge until ctx is done. It lets a vsync
// input replace a free running ticker.
func (e *EdgeInput) Ticks(ctx context.Context) <-chan time.Time {
	ticks := make(chan time.Time)
	go func() {
		defer close(ticks)
		for e.WaitEdge(ctx) == nil {
			select {
			case ticks <- time.Now():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ticks
}

// Close stops edge detection
func (e *EdgeInput) Close() error {
	if err := e.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("failed to release %s: %w", e.pin, err)
	}
	return nil
}

// FieldRate is the NTSC vertical sync rate
const FieldRate = 59940 * physic.MilliHertz

// FieldPeriod returns the time between vsyncs at FieldRate
func FieldPeriod() time.Duration {
	return FieldRate.Period()
}
