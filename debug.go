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
	"os"
)

var (
	debugLevel  = new(slog.LevelVar)
	debugLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: debugLevel}))
)

// SetDebugEnabled turns debug output of the default logger on or off
func SetDebugEnabled(enabled bool) {
	if enabled {
		debugLevel.Set(slog.LevelDebug)
	} else {
		debugLevel.Set(slog.LevelInfo)
	}
}

// DebugEnabled reports whether debug output is on
func DebugEnabled() bool {
	return debugLevel.Level() <= slog.LevelDebug
}

// DefaultLogger returns the logger used when no WithLogger option is given.
// Its level follows SetDebugEnabled.
func DefaultLogger() *slog.Logger {
	return debugLogger
}
