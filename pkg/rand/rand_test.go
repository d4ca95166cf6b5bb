// pkg/rand/rand_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"regexp"
	"strconv"
	"testing"
)

func TestSeededSequenceRepeats(t *testing.T) {
	a, b := NewSeeded(1234), NewSeeded(1234)
	for i := range 100 {
		if x, y := a.Uint32(), b.Uint32(); x != y {
			t.Fatalf("%d: seeded generators diverged: %d vs %d", i, x, y)
		}
	}
}

func TestRange(t *testing.T) {
	r := NewSeeded(42)
	seen := make(map[int]bool)
	for range 10000 {
		v := r.Range(250, 260)
		if v < 250 || v >= 260 {
			t.Fatalf("Range(250, 260) returned %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Errorf("only saw %d distinct values of 10", len(seen))
	}
}

func TestFloat64(t *testing.T) {
	r := NewSeeded(7)
	var sum float64
	const n = 100000
	for range n {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 returned %v", f)
		}
		sum += f
	}
	if mean := sum / n; mean < 0.49 || mean > 0.51 {
		t.Errorf("mean %v is far from 0.5", mean)
	}
}

func TestTailNumber(t *testing.T) {
	re := regexp.MustCompile(`^([0-9]{2})-00([0-9]{2})$`)
	r := NewSeeded(99)
	for range 1000 {
		tail := r.TailNumber()
		m := re.FindStringSubmatch(tail)
		if m == nil {
			t.Fatalf("%q: unexpected tail number format", tail)
		}
		year, _ := strconv.Atoi(m[1])
		serial, _ := strconv.Atoi(m[2])
		if year < 58 || year > 64 {
			t.Errorf("%q: fiscal year out of range", tail)
		}
		if serial < 15 || serial > 94 {
			t.Errorf("%q: serial out of range", tail)
		}
	}
}

func TestIntnPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Intn(0) did not panic")
		}
	}()
	NewSeeded(1).Intn(0)
}
