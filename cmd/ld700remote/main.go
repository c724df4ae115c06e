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

// Command ld700remote is a keyboard remote control: every key press sends
// one LD-700 command frame over a serial port. Holding a key repeats the
// frame, like a held button on a real remote.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	ld700 "github.com/ZaparooProject/go-ld700"
	"github.com/ZaparooProject/go-ld700/detection"
	_ "github.com/ZaparooProject/go-ld700/detection/uart"
	"github.com/ZaparooProject/go-ld700/transport/uart"
	"golang.org/x/term"
)

// frameWriter sends command frames
type frameWriter interface {
	WriteFrame(opcodes ...byte) error
}

// keypad turns key presses into frames until a quit key or EOF
func keypad(in io.ByteReader, out frameWriter, echo io.Writer) error {
	for {
		key, err := in.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		if isQuit(key) {
			return nil
		}
		op, ok := opcodeFor(key)
		if !ok {
			continue
		}
		if err := out.WriteFrame(op); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(echo, "%s\r\n", ld700.CommandName(op, false))
	}
}

func openPort(device string, baud int) (*uart.Port, error) {
	if device == "" {
		opts := detection.DefaultOptions()
		devices, err := detection.DetectAll(context.Background(), &opts)
		if err != nil {
			return nil, fmt.Errorf("serial port auto-detection failed: %w", err)
		}
		device = devices[0].Path
		_, _ = fmt.Printf("Using %s\n", device)
	}
	return uart.Open(device, baud)
}

func main() {
	device := flag.String("device", "",
		"Serial device path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection.")
	baud := flag.Int("baud", uart.DefaultBaudRate, "Serial baud rate")
	flag.Parse()

	port, err := openPort(*device, *baud)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to open port: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = port.Close() }()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to enter raw mode: %v\n", err)
			return
		}
		defer func() { _ = term.Restore(fd, state) }()
	}

	_, _ = fmt.Printf("%s\r\n", help)
	if err := keypad(bufio.NewReader(os.Stdin), port, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\r\n", err)
	}
}
