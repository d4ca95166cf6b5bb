// pkg/math/heading.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// NormalizeHeading reduces it to [0,360).
func NormalizeHeading(h float64) float64 {
	return Mod(h, 360)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float64, b float64) float64 {
	d := Abs(NormalizeHeading(a) - NormalizeHeading(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Compass converts a heading expressed into degrees into a string
// corresponding to the closest compass direction.
func Compass(heading float64) string {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	idx := int(h / 45)
	return [...]string{"North", "Northeast", "East", "Southeast",
		"South", "Southwest", "West", "Northwest"}[idx]
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float64) string {
	h := NormalizeHeading(heading + 22.5)
	idx := int(h / 45)
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[idx]
}
