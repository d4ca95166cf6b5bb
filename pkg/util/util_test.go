// pkg/util/util_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() || e.Err() != nil {
		t.Fatalf("fresh ErrorLogger reports errors")
	}

	e.Push("aircraft")
	e.Push("speed")
	e.ErrorString("%d: must be positive", -5)
	e.Pop()
	if d := e.CurrentDepth(); d != 1 {
		t.Errorf("depth %d, expected 1", d)
	}
	e.Error(errors.New("fuel: missing"))
	e.Pop()
	e.ErrorString("no tail number")

	if !e.HaveErrors() {
		t.Fatalf("expected errors")
	}
	expected := "aircraft / speed: -5: must be positive\naircraft: fuel: missing\nno tail number"
	if e.String() != expected {
		t.Errorf("got %q, expected %q", e.String(), expected)
	}

	var buf bytes.Buffer
	e.PrintErrors(nil, &buf)
	if buf.String() != expected+"\n" {
		t.Errorf("PrintErrors wrote %q", buf.String())
	}
	if err := e.Err(); err == nil || !strings.Contains(err.Error(), "no tail number") {
		t.Errorf("Err() = %v", err)
	}
}

func TestByteCount(t *testing.T) {
	for _, c := range []struct {
		n        int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	} {
		if s := ByteCount(c.n); s != c.expected {
			t.Errorf("ByteCount(%d) = %q, expected %q", c.n, s, c.expected)
		}
	}
}

func TestMapFilterSlice(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}
	even := FilterSlice(s, func(v int) bool { return v%2 == 0 })
	if !slices.Equal(even, []int{2, 4}) {
		t.Errorf("FilterSlice gave %v", even)
	}
	sq := MapSlice(s, func(v int) int { return v * v })
	if !slices.Equal(sq, []int{1, 4, 9, 16, 25}) {
		t.Errorf("MapSlice gave %v", sq)
	}
}
