package transform

import (
	"math"
	"time"
)

// WGS-84 ellipsoid parameters (km).
const (
	wgs84A  = 6378.137               // semi-major axis
	wgs84F  = 1.0 / 298.257223563    // flattening
	wgs84E2 = wgs84F * (2 - wgs84F)  // first eccentricity squared
)

// StateVector is an Earth-centered inertial position/velocity in km and km/s.
type StateVector struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// Geodetic is a position on or above the WGS-84 ellipsoid.
type Geodetic struct {
	LatDeg float64 // [-90, 90]
	LonDeg float64 // [-180, 180]
	AltKm  float64 // above the ellipsoid
}

// Speed returns the scalar Euclidean norm of the velocity components, km/s.
func Speed(vx, vy, vz float64) float64 {
	return math.Sqrt(vx*vx + vy*vy + vz*vz)
}

// ECIToGeodetic converts an inertial position to geodetic coordinates at
// the given UTC time. The inertial frame is rotated about Z by GMST(t) into
// an Earth-fixed frame (no polar motion; sub-100m error, fine for tracking),
// then converted with the iterative Bowring method.
func ECIToGeodetic(sv StateVector, t time.Time) Geodetic {
	gmst := GMST(t)
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	// R3(GMST) rotation: inertial → Earth-fixed.
	x := sv.X*cosG + sv.Y*sinG
	y := -sv.X*sinG + sv.Y*cosG
	z := sv.Z

	return ecefToGeodetic(x, y, z)
}

// ecefToGeodetic converts Earth-fixed coordinates (km) to geodetic
// coordinates. Bowring's iteration converges in 2-3 rounds for Earth orbits.
func ecefToGeodetic(x, y, z float64) Geodetic {
	lon := math.Atan2(y, x)
	p := math.Sqrt(x*x + y*y)

	lat := math.Atan2(z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltKm:  alt,
	}
}
