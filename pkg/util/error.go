// pkg/util/error.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tankerops/tankersim/pkg/log"
)

// ErrorLogger accumulates errors found while validating the launch
// configuration. It tracks context about what is currently being
// validated so that all of the problems can be reported together before
// the mission starts.
type ErrorLogger struct {
	// Tracked via Push()/Pop() calls to remember what we're looking at if
	// an error is found.
	hierarchy []string
	// Actual error messages to report.
	errors []string
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) ErrorString(s string, args ...any) {
	e.errors = append(e.errors, e.prefix()+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, e.prefix()+err.Error())
}

func (e *ErrorLogger) prefix() string {
	if len(e.hierarchy) == 0 {
		return ""
	}
	return strings.Join(e.hierarchy, " / ") + ": "
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

// PrintErrors logs all of the accumulated errors and also writes them to
// w, one per line.
func (e *ErrorLogger) PrintErrors(lg *log.Logger, w io.Writer) {
	// Two loops so they aren't interleaved with logging to stdout
	if lg != nil {
		for _, err := range e.errors {
			lg.Errorf("%+v", err)
		}
	}
	for _, err := range e.errors {
		fmt.Fprintln(w, err)
	}
}

// Err returns nil if no errors have been recorded and otherwise an error
// that joins all of them.
func (e *ErrorLogger) Err() error {
	if !e.HaveErrors() {
		return nil
	}
	var errs []error
	for _, s := range e.errors {
		errs = append(errs, errors.New(s))
	}
	return errors.Join(errs...)
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}
