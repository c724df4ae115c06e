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

package detection

import (
	"path/filepath"
	"strings"
)

// knownBridges are USB serial chips used to carry the command stream.
// Format: VID:PID in uppercase hexadecimal.
var knownBridges = map[string]string{
	"0403:6001": "FTDI FT232R",
	"0403:6015": "FTDI FT231X",
	"10C4:EA60": "Silicon Labs CP210x",
	"1A86:7523": "WCH CH340",
	"2341:0043": "Arduino Uno",
	"2341:0042": "Arduino Mega 2560",
	"2E8A:000A": "Raspberry Pi Pico",
	"16C0:0483": "Teensy",
}

// DefaultBlocklist returns USB devices that are serial ports but never a
// command bridge.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"1915:521F", // Nordic nRF52 DFU bootloader
		"2E8A:0003", // Raspberry Pi Pico in BOOTSEL mode
	}
}

// KnownBridge returns the chip name for a known command bridge
func KnownBridge(vidpid string) (string, bool) {
	name, ok := knownBridges[normalizeVIDPID(vidpid)]
	return name, ok
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = normalizeVIDPID(vidpid)
	for _, blocked := range blocklist {
		if vidpid == normalizeVIDPID(blocked) {
			return true
		}
	}
	return false
}

func normalizeVIDPID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatVIDPID joins hexadecimal vendor and product IDs, padding each to four
// digits. It returns "" when either is missing or not hexadecimal.
func FormatVIDPID(vid, pid string) string {
	vid = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(vid)), "0X")
	pid = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(pid)), "0X")
	if !isHex(vid) || !isHex(pid) || len(vid) > 4 || len(pid) > 4 {
		return ""
	}
	return leftPad(vid) + ":" + leftPad(pid)
}

func leftPad(s string) string {
	return strings.Repeat("0", 4-len(s)) + s
}

// ParseHardwareID extracts VID:PID from a Windows style hardware ID such as
// USB\VID_1A86&PID_7523\5&1234.
func ParseHardwareID(hwid string) string {
	hwid = strings.ToUpper(hwid)
	vidIdx := strings.Index(hwid, "VID_")
	pidIdx := strings.Index(hwid, "PID_")
	if vidIdx < 0 || pidIdx < 0 || vidIdx+8 > len(hwid) || pidIdx+8 > len(hwid) {
		return ""
	}
	return FormatVIDPID(hwid[vidIdx+4:vidIdx+8], hwid[pidIdx+4:pidIdx+8])
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// IsPathIgnored checks if a device path should be ignored.
// Paths are compared cleaned and case-insensitively, so COM3 matches com3.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	device := normalizedPath(devicePath)
	for _, ignorePath := range ignorePaths {
		if ignorePath != "" && normalizedPath(ignorePath) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
