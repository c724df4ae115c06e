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

// Package detection finds the serial bridges an LD-700 controller can be
// attached to. Transport specific detectors register themselves on import:
//
//	import _ "github.com/ZaparooProject/go-ld700/detection/uart"
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no devices found")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	ErrUnknownTransport    = errors.New("no detector registered for transport")
)

// DeviceInfo describes a candidate device
type DeviceInfo struct {
	Metadata     map[string]string
	Transport    string
	Path         string
	Name         string
	VIDPID       string // uppercase "VVVV:PPPP", empty when not USB
	Manufacturer string
	Product      string
	SerialNumber string
}

// String returns a one line description
func (d DeviceInfo) String() string {
	if d.VIDPID == "" {
		return fmt.Sprintf("%s:%s", d.Transport, d.Path)
	}
	return fmt.Sprintf("%s:%s [%s %s]", d.Transport, d.Path, d.VIDPID, d.Product)
}

// Options controls detection
type Options struct {
	Blocklist   []string // VID:PID pairs never reported
	IgnorePaths []string
	Timeout     time.Duration
	// KnownOnly drops USB devices that are not a known serial bridge
	KnownOnly bool
}

// DefaultOptions returns the options used by DetectAll when given nil
func DefaultOptions() Options {
	return Options{
		Timeout:   2 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds devices for one transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Detector{}
)

// RegisterDetector adds d, replacing any detector for the same transport
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Transports lists the registered transports in name order
func Transports() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectAll runs every registered detector. Detectors that fail or are not
// supported on this platform are skipped; their errors are returned only when
// nothing was found.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var devices []DeviceInfo
	var errs []error
	for _, name := range Transports() {
		found, err := detect(ctx, name, opts)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedPlatform) {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
			continue
		}
		devices = append(devices, found...)
	}

	if len(devices) == 0 {
		return nil, errors.Join(append([]error{ErrNoDevicesFound}, errs...)...)
	}
	SortDevices(devices)
	return devices, nil
}

// DetectTransport runs a single detector
func DetectTransport(ctx context.Context, transport string, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	devices, err := detect(ctx, transport, opts)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	SortDevices(devices)
	return devices, nil
}

func detect(ctx context.Context, transport string, opts *Options) ([]DeviceInfo, error) {
	registryMu.RLock()
	d, ok := registry[transport]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransport, transport)
	}

	found, err := d.Detect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Filter(found, opts), nil
}

// Filter drops blocked, ignored and (with KnownOnly) unknown devices
func Filter(devices []DeviceInfo, opts *Options) []DeviceInfo {
	out := devices[:0:0]
	for _, d := range devices {
		if d.VIDPID != "" && IsBlocked(d.VIDPID, opts.Blocklist) {
			continue
		}
		if IsPathIgnored(d.Path, opts.IgnorePaths) {
			continue
		}
		if opts.KnownOnly {
			if _, ok := KnownBridge(d.VIDPID); !ok {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// SortDevices puts known bridges first, then orders by path
func SortDevices(devices []DeviceInfo) {
	sort.SliceStable(devices, func(i, j int) bool {
		_, ki := KnownBridge(devices[i].VIDPID)
		_, kj := KnownBridge(devices[j].VIDPID)
		if ki != kj {
			return ki
		}
		return devices[i].Path < devices[j].Path
	})
}
