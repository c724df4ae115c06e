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

// Command ld700host emulates an LD-700 on a serial line: it decodes the
// controller's command frames, drives a simulated player and optionally
// drives EXT_ACK' on a GPIO pin and records the session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	ld700 "github.com/ZaparooProject/go-ld700"
	"github.com/ZaparooProject/go-ld700/host"
	"github.com/ZaparooProject/go-ld700/script"
	"github.com/ZaparooProject/go-ld700/sim"
)

type flags struct {
	configPath *string
	device     *string
	baud       *int
	ackPin     *string
	leaderPin  *string
	vsyncPin   *string
	capture    *string
	script     *string
	debug      *bool
	list       *bool
}

func parseFlags() *flags {
	f := &flags{
		configPath: flag.String("config", "", "YAML configuration file"),
		device: flag.String("device", "",
			"Serial device path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection."),
		baud:      flag.Int("baud", 0, "Serial baud rate (default: 115200)"),
		ackPin:    flag.String("ack-pin", "", "GPIO pin driving EXT_ACK' (e.g., GPIO17)"),
		leaderPin: flag.String("leader-pin", "", "GPIO pin receiving leader pulses"),
		vsyncPin:  flag.String("vsync-pin", "", "GPIO pin receiving vertical sync, instead of a timer"),
		capture:   flag.String("capture", "", "Record the session to this SQLite file"),
		script:    flag.String("script", "", "Run a Lua script against the simulated player instead of a serial port"),
		debug:     flag.Bool("debug", false, "Enable debug output"),
		list:      flag.Bool("list", false, "List detected serial ports and exit"),
	}
	flag.Parse()
	return f
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(f *flags) (*host.Config, error) {
	cfg := host.DefaultConfig()
	if *f.configPath != "" {
		loaded, err := host.LoadConfig(*f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := []struct {
		dst *string
		src string
	}{
		{&cfg.Serial.Device, *f.device},
		{&cfg.GPIO.AckPin, *f.ackPin},
		{&cfg.GPIO.LeaderPin, *f.leaderPin},
		{&cfg.GPIO.VsyncPin, *f.vsyncPin},
		{&cfg.Capture.Path, *f.capture},
		{&cfg.Script, *f.script},
	}
	for _, o := range overrides {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	if *f.baud != 0 {
		cfg.Serial.BaudRate = *f.baud
	}
	if *f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *host.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	if level <= slog.LevelDebug {
		ld700.SetDebugEnabled(true)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func simConfig(cfg *host.Config) *sim.Config {
	sc := sim.DefaultConfig()
	if cfg.Player.SpinUpTicks > 0 {
		sc.SpinUpTicks = cfg.Player.SpinUpTicks
	}
	if cfg.Player.SearchTicks > 0 {
		sc.SearchTicks = cfg.Player.SearchTicks
	}
	if cfg.Player.TicksPerPicture > 0 {
		sc.TicksPerPicture = cfg.Player.TicksPerPicture
	}
	if cfg.Player.MaxPicture > 0 {
		sc.MaxPicture = cfg.Player.MaxPicture
	}
	return sc
}

func run(ctx context.Context, cfg *host.Config, log *slog.Logger) error {
	hw, err := openHardware(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer hw.Close()

	playerOpts := []sim.Option{
		sim.WithConfig(simConfig(cfg)),
		sim.WithLogger(log.With(slog.String("component", "player"))),
		sim.WithStatus(cfg.InitialStatus()),
	}
	if hw.ack != nil {
		playerOpts = append(playerOpts, sim.WithAckSink(hw.ack))
	}
	player := sim.New(playerOpts...)

	var target ld700.Player = player
	var observer host.Observer
	if hw.recorder != nil {
		target = hw.recorder.Wrap(player)
		observer = hw.recorder
	}

	interp, err := ld700.New(target, cfg.InterpreterOptions(log.With(slog.String("component", "interpreter")))...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if cfg.Script != "" {
		engine, err := script.NewEngine(interp,
			script.WithLogger(log.With(slog.String("component", "script"))),
			script.WithStatusSource(player))
		if err != nil {
			return err
		}
		log.Info("running script", slog.String("path", cfg.Script))
		if err := engine.RunFile(ctx, cfg.Script); err != nil {
			return err
		}
		printState(player.State())
		return nil
	}

	opts := []host.SessionOption{host.WithLogger(log.With(slog.String("component", "session")))}
	if observer != nil {
		opts = append(opts, host.WithObserver(observer))
	}
	if hw.leader != nil {
		opts = append(opts, host.WithLeaderSource(hw.leader))
	}
	if hw.vsync != nil {
		opts = append(opts, host.WithTickSource(hw.vsync.Ticks))
	}

	session, err := host.NewSession(interp, hw.port, player, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = session.Close() }()

	err = session.Start(ctx)
	m := session.Metrics()
	log.Info("session ended",
		slog.Int64("bytes", m.Bytes),
		slog.Int64("vsyncs", m.Vsyncs),
		slog.Int64("leaders", m.Leaders))
	printState(player.State())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printState(s sim.State) {
	_, _ = fmt.Printf("Player: %s at picture %d (audio L=%t R=%t squelch=%t, errors=%d)\n",
		s.Status, s.Picture, s.AudioLeft, s.AudioRight, s.Squelched, s.Errors)
}

func main() {
	f := parseFlags()

	if *f.list {
		if err := listPorts(context.Background()); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to list ports: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(f)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("ld700host failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
