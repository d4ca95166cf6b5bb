// pkg/math/geodesy.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Ellipsoidal geodesics

// Ellipsoid describes a reference ellipsoid of revolution.
type Ellipsoid struct {
	// SemiMajorAxis is the equatorial radius in meters.
	SemiMajorAxis float64
	// Flattening is (a-b)/a.
	Flattening float64
}

// WGS84 is the World Geodetic System 1984 reference ellipsoid.
var WGS84 = Ellipsoid{
	SemiMajorAxis: 6378137,
	Flattening:    1 / 298.257223563,
}

var ErrGeodesicNoConvergence = errors.New("geodesic inverse failed to converge")

const (
	vincentyEpsilon       = 1e-12
	vincentyMaxIterations = 200
)

// SemiMinorAxis returns the polar radius in meters.
func (e Ellipsoid) SemiMinorAxis() float64 {
	return e.SemiMajorAxis * (1 - e.Flattening)
}

// Direct solves the direct geodesic problem with Vincenty's formulae:
// starting at p with the given initial azimuth (degrees clockwise from
// true north), it travels distance meters along the ellipsoid and returns
// the destination point along with the forward azimuth at the
// destination, in [0,360).
func (e Ellipsoid) Direct(p Point2LL, azimuth float64, distance float64) (Point2LL, float64) {
	a, f := e.SemiMajorAxis, e.Flattening
	b := e.SemiMinorAxis()

	alpha1 := Radians(azimuth)
	sinAlpha1, cosAlpha1 := gomath.Sincos(alpha1)

	tanU1 := (1 - f) * gomath.Tan(Radians(p.Latitude()))
	cosU1 := 1 / gomath.Sqrt(1+Sqr(tanU1))
	sinU1 := tanU1 * cosU1

	// Angular distance on the sphere from the equator to p.
	sigma1 := gomath.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - Sqr(sinAlpha)
	uSq := cosSqAlpha * (Sqr(a) - Sqr(b)) / Sqr(b)
	A, B := vincentyAB(uSq)

	sigma := distance / (b * A)
	var sinSigma, cosSigma, cos2SigmaM float64
	for range vincentyMaxIterations {
		cos2SigmaM = gomath.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = gomath.Sincos(sigma)
		deltaSigma := vincentyDeltaSigma(B, sinSigma, cosSigma, cos2SigmaM)

		prev := sigma
		sigma = distance/(b*A) + deltaSigma
		if Abs(sigma-prev) <= vincentyEpsilon {
			break
		}
	}
	cos2SigmaM = gomath.Cos(2*sigma1 + sigma)
	sinSigma, cosSigma = gomath.Sincos(sigma)

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := gomath.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-f)*gomath.Sqrt(Sqr(sinAlpha)+Sqr(x)))
	lambda := gomath.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	L := lambda - (1-C)*f*sinAlpha*
		(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*Sqr(cos2SigmaM))))

	lon2 := NormalizeLongitude(p.Longitude() + Degrees(L))
	alpha2 := NormalizeHeading(Degrees(gomath.Atan2(sinAlpha, -x)))

	return Point2LL{lon2, Degrees(lat2)}, alpha2
}

// Inverse solves the inverse geodesic problem with Vincenty's formulae,
// returning the distance in meters between p1 and p2 along with the
// initial azimuth at p1 and the forward azimuth at p2. Nearly antipodal
// points may fail to converge, in which case ErrGeodesicNoConvergence is
// returned.
func (e Ellipsoid) Inverse(p1, p2 Point2LL) (distance, azimuth1, azimuth2 float64, err error) {
	a, f := e.SemiMajorAxis, e.Flattening
	b := e.SemiMinorAxis()

	L := Radians(p2.Longitude() - p1.Longitude())
	tanU1 := (1 - f) * gomath.Tan(Radians(p1.Latitude()))
	cosU1 := 1 / gomath.Sqrt(1+Sqr(tanU1))
	sinU1 := tanU1 * cosU1
	tanU2 := (1 - f) * gomath.Tan(Radians(p2.Latitude()))
	cosU2 := 1 / gomath.Sqrt(1+Sqr(tanU2))
	sinU2 := tanU2 * cosU2

	lambda := L
	var sinLambda, cosLambda, sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for range vincentyMaxIterations {
		sinLambda, cosLambda = gomath.Sincos(lambda)
		sinSqSigma := Sqr(cosU2*sinLambda) + Sqr(cosU1*sinU2-sinU1*cosU2*cosLambda)
		if sinSqSigma == 0 {
			// Coincident points.
			return 0, 0, 0, nil
		}
		sinSigma = gomath.Sqrt(sinSqSigma)
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = gomath.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - Sqr(sinAlpha)
		cos2SigmaM = 0 // equatorial line
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))

		prev := lambda
		lambda = L + (1-C)*f*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*Sqr(cos2SigmaM))))
		if Abs(lambda) > gomath.Pi {
			break
		}
		if Abs(lambda-prev) <= vincentyEpsilon {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, 0, ErrGeodesicNoConvergence
	}
	// The azimuths use the converged lambda, not the previous iterate.
	sinLambda, cosLambda = gomath.Sincos(lambda)

	uSq := cosSqAlpha * (Sqr(a) - Sqr(b)) / Sqr(b)
	A, B := vincentyAB(uSq)
	deltaSigma := vincentyDeltaSigma(B, sinSigma, cosSigma, cos2SigmaM)

	distance = b * A * (sigma - deltaSigma)
	azimuth1 = NormalizeHeading(Degrees(gomath.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)))
	azimuth2 = NormalizeHeading(Degrees(gomath.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda)))
	return distance, azimuth1, azimuth2, nil
}

func vincentyAB(uSq float64) (A, B float64) {
	A = 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B = uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	return
}

func vincentyDeltaSigma(B, sinSigma, cosSigma, cos2SigmaM float64) float64 {
	return B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*Sqr(cos2SigmaM))-
		B/6*cos2SigmaM*(-3+4*Sqr(sinSigma))*(-3+4*Sqr(cos2SigmaM))))
}
