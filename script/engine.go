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

// Package script drives an Interpreter from Lua, for reproducing controller
// sequences without the controller.
//
// Scripts see these globals:
//
//	send(op, ...)     write the 4-byte frame of each opcode
//	write(b, ...)     write raw bytes
//	digits(n)         send the decimal digits of n as frames
//	vsync([n])        deliver n vsync ticks (default 1)
//	leader()          report a leader pulse
//	status([name])    get or set the player status fed with each input
//	ack()             whether EXT_ACK' is active
//	pending()         the frame number the next seek would use
//	reset()           reset the interpreter
//	log(...)          write an info log line
//
// plus opcode constants such as PLAY, PAUSE and BEGIN_SEEK.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	ld700 "github.com/ZaparooProject/go-ld700"
	"github.com/ZaparooProject/go-ld700/host"
	"github.com/ZaparooProject/go-ld700/internal/frame"
	lua "github.com/yuin/gopher-lua"
)

// Script errors
var (
	ErrNilInterpreter = errors.New("nil interpreter")
	ErrStatusDriven   = errors.New("status is driven by the player")
)

// Opcodes exposes the opcode constants set as Lua globals
var Opcodes = map[string]byte{
	"REJECT":       ld700.CmdReject,
	"PLAY":         ld700.CmdPlay,
	"PAUSE":        ld700.CmdPause,
	"PREPARE_SEEK": ld700.CmdPrepareSeek,
	"BEGIN_SEEK":   ld700.CmdBeginSeek,
	"CLEAR":        ld700.CmdClear,
	"AUDIO_RIGHT":  ld700.CmdAudioRight,
	"AUDIO_STEREO": ld700.CmdAudioStereo,
	"AUDIO_LEFT":   ld700.CmdAudioLeft,
	"STEP_REVERSE": ld700.CmdStepReverse,
	"STEP_FORWARD": ld700.CmdStepForward,
	"ESCAPE":       ld700.CmdEscape,
	"VIDEO_OFF":    ld700.EscDisableVideo,
	"VIDEO_ON":     ld700.EscEnableVideo,
	"AUDIO_OFF":    ld700.EscDisableAudio,
	"AUDIO_ON":     ld700.EscEnableAudio,
	"OSD_OFF":      ld700.EscDisableOSD,
	"OSD_ON":       ld700.EscEnableOSD,
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used by log() and for run diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// WithStatus sets the initial fixed player status
func WithStatus(status ld700.Status) Option {
	return func(e *Engine) {
		e.fixed = status
		e.source = nil
	}
}

// WithStatusSource takes the status from a player model instead of status().
// If the source implements host.VsyncObserver it is ticked after every vsync.
func WithStatusSource(source host.StatusSource) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// Engine runs Lua scripts against one Interpreter. It is not safe for
// concurrent use.
type Engine struct {
	interp *ld700.Interpreter
	source host.StatusSource
	log    *slog.Logger
	bytes  int
	vsyncs int
	fixed  ld700.Status
}

// NewEngine creates an engine. The status defaults to stopped.
func NewEngine(interp *ld700.Interpreter, opts ...Option) (*Engine, error) {
	if interp == nil {
		return nil, ErrNilInterpreter
	}
	e := &Engine{
		interp: interp,
		fixed:  ld700.StatusStopped,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Status returns the status the next input will be fed with
func (e *Engine) Status() ld700.Status {
	if e.source != nil {
		return e.source.Status()
	}
	return e.fixed
}

// Counts returns the bytes and vsyncs delivered so far
func (e *Engine) Counts() (bytes, vsyncs int) {
	return e.bytes, e.vsyncs
}

// RunFile runs the script at path
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return e.Run(ctx, string(src))
}

// Run executes source in a fresh Lua state. Cancelling ctx stops the script
// and Run returns ctx.Err().
func (e *Engine) Run(ctx context.Context, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := openLibs(L); err != nil {
		return err
	}
	e.register(L)
	L.SetContext(ctx)

	if err := L.DoString(source); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

func openLibs(L *lua.LState) error {
	libs := []struct {
		fn   lua.LGFunction
		name string
	}{
		{name: lua.BaseLibName, fn: lua.OpenBase},
		{name: lua.TabLibName, fn: lua.OpenTable},
		{name: lua.StringLibName, fn: lua.OpenString},
		{name: lua.MathLibName, fn: lua.OpenMath},
	}
	for _, lib := range libs {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("failed to open lua library %q: %w", lib.name, err)
		}
	}
	return nil
}

func (e *Engine) register(L *lua.LState) {
	for name, op := range Opcodes {
		L.SetGlobal(name, lua.LNumber(op))
	}
	funcs := map[string]lua.LGFunction{
		"send":    e.luaSend,
		"write":   e.luaWrite,
		"digits":  e.luaDigits,
		"vsync":   e.luaVsync,
		"leader":  e.luaLeader,
		"status":  e.luaStatus,
		"ack":     e.luaAck,
		"pending": e.luaPending,
		"reset":   e.luaReset,
		"log":     e.luaLog,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

func checkByte(L *lua.LState, n int, what string) byte {
	v := L.CheckInt(n)
	if v < 0 || v > 0xFF {
		L.ArgError(n, fmt.Sprintf("%s %d out of range 0-255", what, v))
	}
	return byte(v)
}

func (e *Engine) writeBytes(bs ...byte) {
	for _, b := range bs {
		e.interp.Write(b, e.Status())
		e.bytes++
	}
}

func (e *Engine) luaSend(L *lua.LState) int {
	top := L.GetTop()
	if top == 0 {
		L.ArgError(1, "opcode expected")
	}
	for i := 1; i <= top; i++ {
		f := frame.Encode(checkByte(L, i, "opcode"))
		e.writeBytes(f[:]...)
	}
	return 0
}

func (e *Engine) luaWrite(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		e.writeBytes(checkByte(L, i, "byte"))
	}
	return 0
}

func (e *Engine) luaDigits(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 {
		L.ArgError(1, "frame number must not be negative")
	}
	for _, c := range strconv.Itoa(n) {
		f := frame.Encode(byte(c - '0'))
		e.writeBytes(f[:]...)
	}
	return 0
}

func (e *Engine) luaVsync(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 0 {
		L.ArgError(1, "tick count must not be negative")
	}
	clock, _ := e.source.(host.VsyncObserver)
	for range n {
		e.interp.OnVsync(e.Status())
		if clock != nil {
			clock.OnVsync()
		}
		e.vsyncs++
	}
	return 0
}

func (e *Engine) luaLeader(*lua.LState) int {
	e.interp.OnNewCommand()
	return 0
}

func (e *Engine) luaStatus(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(e.Status().String()))
		return 1
	}
	if e.source != nil {
		L.RaiseError("%v", ErrStatusDriven)
	}
	status, err := ld700.ParseStatus(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	e.fixed = status
	return 0
}

func (e *Engine) luaAck(L *lua.LState) int {
	L.Push(lua.LBool(e.interp.AckActive()))
	return 1
}

func (e *Engine) luaPending(L *lua.LState) int {
	L.Push(lua.LNumber(e.interp.PendingFrameNumber()))
	return 1
}

func (e *Engine) luaReset(*lua.LState) int {
	e.interp.Reset()
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.log.Info(strings.Join(parts, " "), slog.Int("vsync", e.vsyncs))
	return 0
}
