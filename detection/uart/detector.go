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

// Package uart detects serial ports that may carry the LD-700 command stream.
package uart

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-ld700/detection"
	"go.bug.st/serial/enumerator"
)

// Transport is the name this detector registers under
const Transport = "uart"

type detector struct {
	list     func() ([]*enumerator.PortDetails, error)
	fallback func() ([]detection.DeviceInfo, error)
}

// New creates a serial port detector
func New() detection.Detector {
	return &detector{
		list:     enumerator.GetDetailedPortsList,
		fallback: fallbackPorts,
	}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return Transport
}

// Detect lists serial ports. Detailed USB information is used when the
// platform enumerator provides it; otherwise only port names are reported.
func (d *detector) Detect(ctx context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports, err := d.list()
	if err != nil {
		devices, fbErr := d.fallback()
		if fbErr != nil {
			return nil, fmt.Errorf("enumerate serial ports: %w", err)
		}
		return devices, nil
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, p := range ports {
		if p == nil || p.Name == "" {
			continue
		}
		devices = append(devices, toDeviceInfo(p))
	}
	return devices, nil
}

func toDeviceInfo(p *enumerator.PortDetails) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport: Transport,
		Path:      p.Name,
		Name:      p.Name,
	}
	if !p.IsUSB {
		return info
	}

	info.VIDPID = detection.FormatVIDPID(p.VID, p.PID)
	info.Product = p.Product
	info.SerialNumber = p.SerialNumber
	if chip, ok := detection.KnownBridge(info.VIDPID); ok {
		info.Metadata = map[string]string{"bridge": chip}
		if info.Product == "" {
			info.Product = chip
		}
	}
	return info
}
