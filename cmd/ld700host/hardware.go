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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZaparooProject/go-ld700/capture"
	"github.com/ZaparooProject/go-ld700/detection"
	_ "github.com/ZaparooProject/go-ld700/detection/uart"
	"github.com/ZaparooProject/go-ld700/host"
	"github.com/ZaparooProject/go-ld700/transport/gpio"
	"github.com/ZaparooProject/go-ld700/transport/uart"
)

// hardware holds everything opened for a run; nil fields are unused
type hardware struct {
	port     *uart.Port
	ack      *gpio.AckLine
	leader   *gpio.EdgeInput
	vsync    *gpio.EdgeInput
	store    *capture.Store
	recorder *capture.Recorder
	log      *slog.Logger
}

func openHardware(ctx context.Context, cfg *host.Config, log *slog.Logger) (_ *hardware, err error) {
	hw := &hardware{log: log}
	defer func() {
		if err != nil {
			hw.Close()
		}
	}()

	if cfg.Script == "" {
		path := cfg.Serial.Device
		if path == "" {
			if path, err = detectPort(ctx); err != nil {
				return nil, err
			}
			log.Info("auto-detected serial port", slog.String("path", path))
		}
		hw.port, err = uart.OpenWithRetry(ctx, path, cfg.Serial.BaudRate,
			cfg.Serial.OpenRetries, cfg.Serial.RetryDelay)
		if err != nil {
			return nil, err
		}
	}

	if cfg.GPIO.AckPin != "" {
		if hw.ack, err = gpio.OpenAckLine(cfg.GPIO.AckPin); err != nil {
			return nil, fmt.Errorf("ack pin: %w", err)
		}
	}
	if cfg.GPIO.LeaderPin != "" {
		if hw.leader, err = gpio.OpenLeaderInput(cfg.GPIO.LeaderPin); err != nil {
			return nil, fmt.Errorf("leader pin: %w", err)
		}
	}
	if cfg.GPIO.VsyncPin != "" {
		if hw.vsync, err = gpio.OpenVsyncInput(cfg.GPIO.VsyncPin); err != nil {
			return nil, fmt.Errorf("vsync pin: %w", err)
		}
	}

	if cfg.Capture.Path != "" {
		if hw.store, err = capture.Open(cfg.Capture.Path, log.With(slog.String("component", "capture"))); err != nil {
			return nil, err
		}
		if hw.recorder, err = hw.store.Begin(cfg.Capture.Description); err != nil {
			return nil, err
		}
	}
	return hw, nil
}

// Close releases everything in reverse order of opening
func (hw *hardware) Close() {
	var errs []error
	if hw.recorder != nil {
		errs = append(errs, hw.recorder.Close())
	}
	if hw.store != nil {
		errs = append(errs, hw.store.Close())
	}
	if hw.vsync != nil {
		errs = append(errs, hw.vsync.Close())
	}
	if hw.leader != nil {
		errs = append(errs, hw.leader.Close())
	}
	if hw.ack != nil {
		errs = append(errs, hw.ack.Close())
	}
	if hw.port != nil {
		errs = append(errs, hw.port.Close())
	}
	if err := errors.Join(errs...); err != nil {
		hw.log.Warn("failed to release hardware", slog.Any("error", err))
	}
}

func detectPort(ctx context.Context) (string, error) {
	opts := detection.DefaultOptions()
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return "", fmt.Errorf("serial port auto-detection failed: %w", err)
	}
	if len(devices) == 0 {
		return "", errors.New("no serial ports found")
	}
	return devices[0].Path, nil
}

func listPorts(ctx context.Context) error {
	opts := detection.DefaultOptions()
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return err
	}
	for _, d := range devices {
		bridge := ""
		if name, ok := detection.KnownBridge(d.VIDPID); ok {
			bridge = " (" + name + ")"
		}
		_, _ = fmt.Printf("%s%s\n", d, bridge)
	}
	return nil
}
