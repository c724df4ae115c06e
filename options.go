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
	"log/slog"
)

// DefaultAckHoldTicks is how many vsyncs EXT_ACK' stays active after an
// acknowledged command. Logic analyzer captures show roughly 49ms, three
// ticks after the one-tick drop-out for the new command.
const DefaultAckHoldTicks = 4

// Config holds the tunable behavior of an Interpreter
type Config struct {
	// Logger receives diagnostics. Defaults to the package debug logger.
	Logger *slog.Logger
	// AckHoldTicks is the countdown installed by an acknowledged command.
	AckHoldTicks int
	// KeyRepeatHold re-installs the hold for partial frames and dropped
	// repeats while the countdown is running, so a held remote key keeps
	// EXT_ACK' active, as logic analyzer captures of a real player show.
	// A dropped repeat therefore changes the countdown. Set it to false for
	// dropped repeats to leave the countdown untouched.
	KeyRepeatHold bool
	// ReportDigitOverflow reports ErrorTooManyDigits when a sixth digit
	// pushes out the oldest one.
	ReportDigitOverflow bool
}

// DefaultConfig returns the configuration matching real LD-700 hardware
func DefaultConfig() *Config {
	return &Config{
		AckHoldTicks:  DefaultAckHoldTicks,
		KeyRepeatHold: true,
	}
}

// Option is a functional option for configuring an Interpreter
type Option func(*Interpreter) error

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(in *Interpreter) error {
		if config == nil {
			return nil
		}
		c := *config
		if err := validateAckHold(c.AckHoldTicks); err != nil {
			return err
		}
		in.config = &c
		return nil
	}
}

// WithLogger sets the logger used for interpreter diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) error {
		in.config.Logger = logger
		return nil
	}
}

// WithAckHoldTicks sets how many vsyncs an acknowledged command holds EXT_ACK'
func WithAckHoldTicks(ticks int) Option {
	return func(in *Interpreter) error {
		if err := validateAckHold(ticks); err != nil {
			return err
		}
		in.config.AckHoldTicks = ticks
		return nil
	}
}

// WithKeyRepeatHold enables or disables re-arming the hold while a command
// is being repeated
func WithKeyRepeatHold(enabled bool) Option {
	return func(in *Interpreter) error {
		in.config.KeyRepeatHold = enabled
		return nil
	}
}

// WithDigitOverflowReporting enables ErrorTooManyDigits reports
func WithDigitOverflowReporting(enabled bool) Option {
	return func(in *Interpreter) error {
		in.config.ReportDigitOverflow = enabled
		return nil
	}
}

func validateAckHold(ticks int) error {
	if ticks < 1 || ticks > 255 {
		return ErrInvalidAckHold
	}
	return nil
}
