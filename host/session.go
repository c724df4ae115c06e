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

// Package host runs an ld700.Interpreter against a live byte stream and a
// vsync clock.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	ld700 "github.com/ZaparooProject/go-ld700"
)

// Session errors
var (
	ErrNilInterpreter   = errors.New("interpreter cannot be nil")
	ErrNilSource        = errors.New("byte source cannot be nil")
	ErrNilStatus        = errors.New("status source cannot be nil")
	ErrSessionRunning   = errors.New("session already running")
	ErrSessionDone      = errors.New("byte source is finished")
	ErrSessionClosed    = errors.New("session closed")
	ErrTickSourceClosed = errors.New("vsync source closed")
)

// StatusSource reports the player status passed with every byte and tick
type StatusSource interface {
	Status() ld700.Status
}

// VsyncObserver is optionally implemented by a StatusSource that keeps its own
// clock, such as a simulated player. OnVsync runs after the interpreter's tick.
type VsyncObserver interface {
	OnVsync()
}

// LeaderSource reports the leader pulse that starts every command frame
type LeaderSource interface {
	WaitLeader(ctx context.Context) error
}

// Observer sees every event a session feeds to the interpreter, in order
type Observer interface {
	ObserveByte(b byte, status ld700.Status)
	ObserveVsync(status ld700.Status)
	ObserveLeader()
}

// TickSource delivers vsync ticks until ctx is done
type TickSource func(ctx context.Context) <-chan time.Time

// Metrics is a snapshot of session counters
type Metrics struct {
	LastVsync  time.Time
	Bytes      int64
	Vsyncs     int64
	Leaders    int64
	ReadErrors int64
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithObserver records every byte, tick and leader
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		s.observer = o
	}
}

// WithLeaderSource calls Interpreter.OnNewCommand on every leader pulse
func WithLeaderSource(l LeaderSource) SessionOption {
	return func(s *Session) {
		s.leader = l
	}
}

// WithTickSource replaces the free running vsync ticker, for example with a
// GPIO vsync input
func WithTickSource(ticks TickSource) SessionOption {
	return func(s *Session) {
		s.ticks = ticks
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.log = logger
	}
}

// Session serializes a byte stream, vsync ticks and leader pulses into one
// interpreter. Only the goroutine running Start touches the interpreter.
//
// A session owns a single reader goroutine, started by the first Start and
// shared by later ones, so bytes read while no Start is running are handed to
// the next. The reader only exits when the source returns an error or EOF, or
// when Close is called and the pending Read returns.
type Session struct {
	interp    *ld700.Interpreter
	source    io.Reader
	status    StatusSource
	clock     VsyncObserver
	observer  Observer
	leader    LeaderSource
	ticks     TickSource
	reads     chan readResult
	stop      chan struct{}
	config    *Config
	log       *slog.Logger
	bytes     atomic.Int64
	vsyncs    atomic.Int64
	leaders   atomic.Int64
	readErrs  atomic.Int64
	lastVsync atomic.Int64
	running   atomic.Bool
	readOnce  sync.Once
	closeOnce sync.Once
}

// NewSession creates a session. A nil config uses DefaultConfig.
func NewSession(
	interp *ld700.Interpreter,
	source io.Reader,
	status StatusSource,
	cfg *Config,
	opts ...SessionOption,
) (*Session, error) {
	switch {
	case interp == nil:
		return nil, ErrNilInterpreter
	case source == nil:
		return nil, ErrNilSource
	case status == nil:
		return nil, ErrNilStatus
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Session{
		interp: interp,
		source: source,
		status: status,
		config: cfg,
		reads:  make(chan readResult),
		stop:   make(chan struct{}),
	}
	if clock, ok := status.(VsyncObserver); ok {
		s.clock = clock
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = ld700.DefaultLogger()
	}
	if s.ticks == nil {
		s.ticks = Ticker(cfg.VsyncInterval())
	}
	return s, nil
}

// Ticker returns a TickSource backed by a time.Ticker
func Ticker(interval time.Duration) TickSource {
	return func(ctx context.Context) <-chan time.Time {
		out := make(chan time.Time)
		go func() {
			defer close(out)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					select {
					case out <- now:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return out
	}
}

type readResult struct {
	err  error
	data []byte
}

// Start runs the session until ctx is done, the source fails or the source
// reaches EOF. It returns ctx.Err() on cancellation, nil on EOF and the read
// error otherwise. A session stopped by cancellation can be started again;
// once the source has finished Start returns ErrSessionDone.
func (s *Session) Start(ctx context.Context) error {
	select {
	case <-s.stop:
		return ErrSessionClosed
	default:
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.readOnce.Do(func() { go s.readLoop() })
	ticks := s.ticks(ctx)
	var leaders <-chan struct{}
	if s.leader != nil {
		leaders = s.leaderLoop(ctx)
	}

	s.log.Info("session started", slog.Duration("vsync", s.config.VsyncInterval()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stop:
			return ErrSessionClosed

		case r, ok := <-s.reads:
			if !ok {
				return ErrSessionDone
			}
			for _, b := range r.data {
				s.writeByte(b)
			}
			if r.err == nil {
				continue
			}
			if errors.Is(r.err, io.EOF) {
				s.log.Info("byte source reached EOF")
				return nil
			}
			s.readErrs.Add(1)
			return fmt.Errorf("failed to read command stream: %w", r.err)

		case now, ok := <-ticks:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return ErrTickSourceClosed
			}
			s.vsync(now)

		case _, ok := <-leaders:
			if !ok {
				leaders = nil
				continue
			}
			s.newCommand()
		}
	}
}

func (s *Session) readLoop() {
	defer close(s.reads)
	buf := make([]byte, s.config.ReadBufferSize)
	for {
		n, err := s.source.Read(buf)
		if n == 0 && err == nil {
			// read timeout
			select {
			case <-s.stop:
				return
			default:
			}
			continue
		}
		r := readResult{err: err}
		if n > 0 {
			r.data = append([]byte(nil), buf[:n]...)
		}
		select {
		case s.reads <- r:
		case <-s.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// Close stops the session. A running Start returns ErrSessionClosed. Close
// does not close the source; the reader exits once its pending Read returns.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *Session) leaderLoop(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		for {
			if err := s.leader.WaitLeader(ctx); err != nil {
				if ctx.Err() == nil {
					s.log.Error("leader input failed", slog.Any("error", err))
				}
				return
			}
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Session) writeByte(b byte) {
	status := s.status.Status()
	if s.observer != nil {
		s.observer.ObserveByte(b, status)
	}
	s.interp.Write(b, status)
	s.bytes.Add(1)
}

func (s *Session) vsync(now time.Time) {
	status := s.status.Status()
	if s.observer != nil {
		s.observer.ObserveVsync(status)
	}
	s.interp.OnVsync(status)
	if s.clock != nil {
		s.clock.OnVsync()
	}
	s.vsyncs.Add(1)
	s.lastVsync.Store(now.UnixNano())
}

func (s *Session) newCommand() {
	if s.observer != nil {
		s.observer.ObserveLeader()
	}
	s.interp.OnNewCommand()
	s.leaders.Add(1)
}

// Metrics returns the session counters
func (s *Session) Metrics() Metrics {
	m := Metrics{
		Bytes:      s.bytes.Load(),
		Vsyncs:     s.vsyncs.Load(),
		Leaders:    s.leaders.Load(),
		ReadErrors: s.readErrs.Load(),
	}
	if last := s.lastVsync.Load(); last != 0 {
		m.LastVsync = time.Unix(0, last)
	}
	return m
}

// Running reports whether Start is active
func (s *Session) Running() bool {
	return s.running.Load()
}
