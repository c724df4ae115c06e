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

// Package uart carries the LD-700 command stream over a serial port, usually
// a USB bridge that turns the controller's pulse train into bytes.
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ZaparooProject/go-ld700/internal/frame"
	"github.com/ZaparooProject/go-ld700/internal/transport"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the rate of the usual USB bridge firmware
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds a Read so a session can notice cancellation
	DefaultReadTimeout = 100 * time.Millisecond
)

// ErrPortClosed is returned by operations on a closed Port
var ErrPortClosed = errors.New("serial port closed")

// rawPort is the part of serial.Port the transport uses
type rawPort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

var openPort = func(path string, mode *serial.Mode, timeout time.Duration) (rawPort, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return port, nil
}

// Port is an open serial connection. Reads return (0, nil) when the read
// timeout expires with no data.
type Port struct {
	port   rawPort
	path   string
	mu     sync.Mutex
	closed bool
}

// Open opens path at baud, 8N1
func Open(path string, baud int) (*Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := openPort(path, mode, DefaultReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// drop whatever the bridge buffered before we were listening
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to reset input buffer on %s: %w", path, err)
	}
	return &Port{port: port, path: path}, nil
}

// OpenWithRetry keeps trying to open a port that is missing or busy, as a
// USB adapter is for a moment after being plugged in.
func OpenWithRetry(ctx context.Context, path string, baud, retries int, delay time.Duration) (*Port, error) {
	port, err := transport.WithRetry(ctx, transport.RetryConfig{
		Description: "open " + path,
		MaxRetries:  retries,
		RetryDelay:  delay,
	}, func() (*Port, bool, error) {
		p, err := Open(path, baud)
		if err == nil {
			return p, false, nil
		}
		if isTransient(err) {
			return nil, true, nil
		}
		return nil, false, err
	})
	if err != nil {
		return nil, fmt.Errorf("serial port unavailable: %w", err)
	}
	return port, nil
}

func isTransient(err error) bool {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return false
	}
	switch portErr.Code() {
	case serial.PortBusy, serial.PortNotFound:
		return true
	default:
		return false
	}
}

// Path returns the device path the port was opened with
func (p *Port) Path() string {
	return p.path
}

// Read reads received command bytes
func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, ErrPortClosed
	}

	n, err := p.port.Read(b)
	if err != nil {
		return n, fmt.Errorf("serial read failed: %w", err)
	}
	return n, nil
}

// Write sends raw bytes
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := p.port.Write(b)
	if err != nil {
		return n, fmt.Errorf("serial write failed: %w", err)
	}
	return n, nil
}

// WriteFrame sends one complete frame per opcode
func (p *Port) WriteFrame(opcodes ...byte) error {
	if len(opcodes) == 0 {
		return nil
	}
	_, err := p.Write(frame.Append(nil, opcodes...))
	return err
}

// Close closes the port. Closing twice is not an error.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", p.path, err)
	}
	return nil
}

var _ io.ReadWriteCloser = (*Port)(nil)
