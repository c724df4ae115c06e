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

package uart

import "github.com/ZaparooProject/go-ld700/detection"

func namesToDevices(names []string) []detection.DeviceInfo {
	devices := make([]detection.DeviceInfo, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		devices = append(devices, detection.DeviceInfo{
			Transport: Transport,
			Path:      name,
			Name:      name,
		})
	}
	return devices
}
