// pkg/log/stack.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strings"
)

// StackFrame is one entry of the callstack attached to log records.
type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

const maxCallstackDepth = 16

// Callstack returns the caller's stack, starting at the function that
// called the Logger method and stopping at main.main or the runtime.
// Package paths within the module are shortened.
func Callstack() []StackFrame {
	var pcs [maxCallstackDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			break
		}

		fn := strings.TrimPrefix(frame.Function, "github.com/tankerops/tankersim/pkg/")
		stack = append(stack, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(fn, "main."),
		})

		if !more || frame.Function == "main.main" {
			break
		}
	}
	return stack
}
