// pkg/math/latlong.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"regexp"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude
// degrees. Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (32.582167, -114.459419)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N032.34.55.801,W114.27.33.908
func (p Point2LL) DMSString() string {
	format := func(v float64) string {
		// Round to the nearest millisecond of arc up front so that
		// truncation below doesn't turn .9999 into .999.
		ms := int64(gomath.Round(v * 3600000))
		return fmt.Sprintf("%03d.%02d.%02d.%03d", ms/3600000, (ms/60000)%60, (ms/1000)%60, ms%1000)
	}

	var s string
	if p[1] >= 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] >= 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

var (
	// pair of floats (no exponents)
	reLatLongFloat = regexp.MustCompile(`^ *(\-?[0-9]+(?:\.[0-9]+)?), *(\-?[0-9]+(?:\.[0-9]+)?) *$`)
	// e.g. N032.34.55.801,W114.27.33.908
	reLatLongDotted = regexp.MustCompile(`^([NS])([0-9]+)\.([0-9]+)\.([0-9]+)\.([0-9]+), *([EW])([0-9]+)\.([0-9]+)\.([0-9]+)\.([0-9]+)$`)
)

// ParseLatLong parses a position given either as a pair of decimal
// degrees "lat, lon" or in dotted degrees-minutes-seconds form
// "N032.34.55.801,W114.27.33.908".
func ParseLatLong(s string) (Point2LL, error) {
	if strs := reLatLongFloat.FindStringSubmatch(s); len(strs) == 3 {
		lat, err := strconv.ParseFloat(strs[1], 64)
		if err != nil {
			return Point2LL{}, err
		}
		lon, err := strconv.ParseFloat(strs[2], 64)
		if err != nil {
			return Point2LL{}, err
		}
		return checkLatLong(s, Point2LL{lon, lat})
	} else if strs := reLatLongDotted.FindStringSubmatch(s); len(strs) == 11 {
		parse := func(hemi, deg, min, sec, frac string) (float64, error) {
			var v [3]int
			for i, str := range []string{deg, min, sec} {
				n, err := strconv.Atoi(str)
				if err != nil {
					return 0, err
				}
				v[i] = n
			}
			if v[1] >= 60 || v[2] >= 60 {
				return 0, fmt.Errorf("%s.%s.%s: invalid minutes or seconds", deg, min, sec)
			}
			// Treat the last set of digits as a decimal, so that
			// N32.34.55.8 is handled like N32.34.55.800.
			f, err := strconv.ParseFloat("0."+frac, 64)
			if err != nil {
				return 0, err
			}
			d := float64(v[0]) + float64(v[1])/60 + (float64(v[2])+f)/3600
			if hemi == "S" || hemi == "W" {
				d = -d
			}
			return d, nil
		}

		lat, err := parse(strs[1], strs[2], strs[3], strs[4], strs[5])
		if err != nil {
			return Point2LL{}, err
		}
		lon, err := parse(strs[6], strs[7], strs[8], strs[9], strs[10])
		if err != nil {
			return Point2LL{}, err
		}
		return checkLatLong(s, Point2LL{lon, lat})
	}
	return Point2LL{}, fmt.Errorf("%s: invalid latlong string", s)
}

func checkLatLong(s string, p Point2LL) (Point2LL, error) {
	if p.Latitude() < -90 || p.Latitude() > 90 {
		return Point2LL{}, fmt.Errorf("%s: latitude out of range", s)
	}
	if p.Longitude() < -180 || p.Longitude() > 180 {
		return Point2LL{}, fmt.Errorf("%s: longitude out of range", s)
	}
	return p, nil
}

// NormalizeLongitude reduces a longitude to [-180,180).
func NormalizeLongitude(lon float64) float64 {
	return Mod(lon+180, 360) - 180
}
