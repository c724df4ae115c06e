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

package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	ld700 "github.com/ZaparooProject/go-ld700"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Default session settings
const (
	DefaultVsyncHz        = 59.94
	DefaultReadBufferSize = 64
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the host configuration, normally loaded from YAML
type Config struct {
	LogLevel       string            `yaml:"log_level"`
	Script         string            `yaml:"script"`
	Serial         SerialConfig      `yaml:"serial"`
	GPIO           GPIOConfig        `yaml:"gpio"`
	Capture        CaptureConfig     `yaml:"capture"`
	Player         PlayerConfig      `yaml:"player"`
	Interpreter    InterpreterConfig `yaml:"interpreter"`
	VsyncHz        float64           `yaml:"vsync_hz"`
	ReadBufferSize int               `yaml:"read_buffer_size"`
}

// SerialConfig selects the port carrying the command stream. An empty device
// means auto-detect.
type SerialConfig struct {
	Device      string        `yaml:"device"`
	BaudRate    int           `yaml:"baud_rate"`
	OpenRetries int           `yaml:"open_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// GPIOConfig names the handshake pins. Empty names are not used.
type GPIOConfig struct {
	AckPin    string `yaml:"ack_pin"`
	LeaderPin string `yaml:"leader_pin"`
	VsyncPin  string `yaml:"vsync_pin"`
}

// CaptureConfig enables recording a session to a SQLite trace
type CaptureConfig struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
}

// PlayerConfig sets up the simulated player
type PlayerConfig struct {
	InitialStatus   string `yaml:"initial_status"`
	SpinUpTicks     int    `yaml:"spin_up_ticks"`
	SearchTicks     int    `yaml:"search_ticks"`
	TicksPerPicture int    `yaml:"ticks_per_picture"`
	MaxPicture      uint32 `yaml:"max_picture"`
}

// InterpreterConfig maps onto ld700 options. Zero values keep the defaults.
type InterpreterConfig struct {
	KeyRepeatHold       *bool `yaml:"key_repeat_hold"`
	AckHoldTicks        int   `yaml:"ack_hold_ticks"`
	ReportDigitOverflow bool  `yaml:"report_digit_overflow"`
}

// DefaultConfig returns the settings used without a config file
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		VsyncHz:        DefaultVsyncHz,
		ReadBufferSize: DefaultReadBufferSize,
		Serial: SerialConfig{
			OpenRetries: 5,
			RetryDelay:  500 * time.Millisecond,
		},
		Capture: CaptureConfig{
			Description: "ld700host session",
		},
		Player: PlayerConfig{
			InitialStatus: ld700.StatusStopped.String(),
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML over DefaultConfig and validates the result
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if c.VsyncHz <= 0 || c.VsyncHz > 1000 {
		return fmt.Errorf("%w: vsync_hz %v out of range", ErrInvalidConfig, c.VsyncHz)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("%w: read_buffer_size must be positive", ErrInvalidConfig)
	}
	if h := c.Interpreter.AckHoldTicks; h != 0 && (h < 1 || h > 255) {
		return fmt.Errorf("%w: ack_hold_ticks %d out of range", ErrInvalidConfig, h)
	}
	if c.Serial.OpenRetries < 0 {
		return fmt.Errorf("%w: open_retries must not be negative", ErrInvalidConfig)
	}
	if _, err := ld700.ParseStatus(c.Player.InitialStatus); err != nil {
		return fmt.Errorf("%w: initial_status: %w", ErrInvalidConfig, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// VsyncInterval returns the period of the vsync ticker
func (c *Config) VsyncInterval() time.Duration {
	hz := c.VsyncHz
	if hz <= 0 {
		hz = DefaultVsyncHz
	}
	return physic.Frequency(hz * float64(physic.Hertz)).Period()
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// InitialStatus returns the parsed player start status
func (c *Config) InitialStatus() ld700.Status {
	status, err := ld700.ParseStatus(c.Player.InitialStatus)
	if err != nil {
		return ld700.StatusStopped
	}
	return status
}

// InterpreterOptions converts the interpreter section to ld700 options
func (c *Config) InterpreterOptions(logger *slog.Logger) []ld700.Option {
	var opts []ld700.Option
	if logger != nil {
		opts = append(opts, ld700.WithLogger(logger))
	}
	if c.Interpreter.AckHoldTicks != 0 {
		opts = append(opts, ld700.WithAckHoldTicks(c.Interpreter.AckHoldTicks))
	}
	if c.Interpreter.KeyRepeatHold != nil {
		opts = append(opts, ld700.WithKeyRepeatHold(*c.Interpreter.KeyRepeatHold))
	}
	if c.Interpreter.ReportDigitOverflow {
		opts = append(opts, ld700.WithDigitOverflowReporting(true))
	}
	return opts
}
