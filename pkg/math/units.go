// pkg/math/units.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

const (
	// KnotsPerKmh is the number of knots in one kilometer per hour.
	KnotsPerKmh = 0.539956803456
	// MphPerKnot is the number of statute miles per hour in one knot.
	MphPerKnot = 1.15077945

	MetersPerKilometer    = 1000
	NauticalMilesToFeet   = 6076.12
	NauticalMilesToMeters = 1852
	FeetToMeters          = 0.3048
)

// KnotsToKmh converts a speed in knots to kilometers per hour.
func KnotsToKmh(kts float64) float64 {
	return kts / KnotsPerKmh
}

// KnotsToMph converts a speed in knots to statute miles per hour.
func KnotsToMph(kts float64) float64 {
	return kts * MphPerKnot
}

// KmhDistance returns the distance in meters covered in the given number
// of minutes at the given ground speed in kilometers per hour.
func KmhDistance(kmh float64, minutes float64) float64 {
	return kmh / 60 * minutes * MetersPerKilometer
}
