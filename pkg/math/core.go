// pkg/math/core.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

///////////////////////////////////////////////////////////////////////////
// core math

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Mod returns a mod b with the result in [0,b) for positive b, unlike
// math.Mod, which follows the sign of a.
func Mod(a, b float64) float64 {
	m := gomath.Mod(a, b)
	if m < 0 {
		m += b
	}
	if m >= b { // -tiny + b rounds to b
		m = 0
	}
	return m
}
