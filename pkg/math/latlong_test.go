// pkg/math/latlong_test.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestParseLatLong(t *testing.T) {
	type LL struct {
		str string
		pos Point2LL
	}
	latlongs := []LL{
		{str: "32.582167, -114.459419", pos: Point2LL{-114.459419, 32.582167}}, // Goldwater ARIP
		{str: "32.582167,-114.459419", pos: Point2LL{-114.459419, 32.582167}},
		{str: "N032.34.55.801,W114.27.33.908", pos: Point2LL{-114.459419, 32.582167}},
		{str: "N40.37.58.400, W073.46.17.000", pos: Point2LL{-73.771389, 40.632889}}, // JFK VOR
		{str: "S37.57.03.720,E144.25.29.524", pos: Point2LL{144.424868, -37.951033}},
	}

	for _, ll := range latlongs {
		p, err := ParseLatLong(ll.str)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", ll.str, err)
			continue
		}
		if Abs(p[0]-ll.pos[0]) > 1e-6 {
			t.Errorf("%s: got %.9g for longitude, expected %.9g", ll.str, p[0], ll.pos[0])
		}
		if Abs(p[1]-ll.pos[1]) > 1e-6 {
			t.Errorf("%s: got %.9g for latitude, expected %.9g", ll.str, p[1], ll.pos[1])
		}
	}

	for _, invalid := range []string{
		"",
		"E40.37.58.400, W073.46.17.000",
		"40.37.58.400, W073.46.17.000",
		"N40.37.58.400, -73.22",
		"N40.75.58.400, W073.46.17.000",
		"91.0, 10.0",
		"45.0, 181.0",
		"north, west",
	} {
		if _, err := ParseLatLong(invalid); err == nil {
			t.Errorf("%q: no error was returned for invalid latlong string!", invalid)
		}
	}
}

func TestDMSStringRoundTrip(t *testing.T) {
	p := Point2LL{-114.459419, 32.582167}
	if s := p.DMSString(); s != "N032.34.55.801,W114.27.33.908" {
		t.Errorf("DMSString() = %q", s)
	}

	q, err := ParseLatLong(p.DMSString())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Milliseconds of arc are about 3cm.
	if Abs(q[0]-p[0]) > 1e-6 || Abs(q[1]-p[1]) > 1e-6 {
		t.Errorf("round trip gave %s, expected %s", q.DDString(), p.DDString())
	}
}

func TestNormalizeLongitude(t *testing.T) {
	for _, test := range [][2]float64{{0, 0}, {180, -180}, {181, -179}, {-181, 179}, {-114.5, -114.5}, {540, -180}} {
		if l := NormalizeLongitude(test[0]); Abs(l-test[1]) > 1e-12 {
			t.Errorf("NormalizeLongitude(%v) = %v, expected %v", test[0], l, test[1])
		}
	}
}
