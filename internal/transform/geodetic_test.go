package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

func TestSpeed(t *testing.T) {
	tests := []struct {
		name       string
		vx, vy, vz float64
		want       float64
	}{
		{"zero", 0, 0, 0, 0},
		{"unit axes", 1, 2, 2, 3},
		{"ISS-like", 1.19, -4.5, -5.6, math.Sqrt(1.19*1.19 + 4.5*4.5 + 5.6*5.6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Speed(tt.vx, tt.vy, tt.vz)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Speed = %.12f, want %.12f", got, tt.want)
			}
		})
	}
}

// TestECIRotationAgainstLibrary validates the inertial→Earth-fixed rotation
// against go-satellite's ECIToECEF using the same GMST angle. Both use a
// GMST-only rotation, so positions should agree to floating point precision.
func TestECIRotationAgainstLibrary(t *testing.T) {
	tests := []struct {
		name string
		sv   StateVector
		time time.Time
	}{
		{
			name: "ISS-like position",
			sv:   StateVector{X: -4945.2, Y: -3625.6, Z: 2944.8},
			time: time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "equatorial position",
			sv:   StateVector{X: 6778.0, Y: 0.0, Z: 0.0},
			time: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gmst := GMST(tt.time)

			cosG := math.Cos(gmst)
			sinG := math.Sin(gmst)
			ourX := tt.sv.X*cosG + tt.sv.Y*sinG
			ourY := -tt.sv.X*sinG + tt.sv.Y*cosG
			ourZ := tt.sv.Z

			ref := satellite.ECIToECEF(satellite.Vector3{X: tt.sv.X, Y: tt.sv.Y, Z: tt.sv.Z}, gmst)

			// Centimeter tolerance in km units.
			const tol = 1e-5
			if math.Abs(ourX-ref.X) > tol || math.Abs(ourY-ref.Y) > tol || math.Abs(ourZ-ref.Z) > tol {
				t.Errorf("rotation mismatch: ours=(%.8f, %.8f, %.8f) lib=(%.8f, %.8f, %.8f)",
					ourX, ourY, ourZ, ref.X, ref.Y, ref.Z)
			}
		})
	}
}

// TestECIToGeodeticRanges verifies derived coordinates land in valid ranges
// with a plausible ISS altitude.
func TestECIToGeodeticRanges(t *testing.T) {
	sv := StateVector{
		X: -4945.2, Y: -3625.6, Z: 2944.8,
		VX: 1.19, VY: -4.5, VZ: -5.6,
	}
	ts := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	geo := ECIToGeodetic(sv, ts)

	if geo.LatDeg < -90 || geo.LatDeg > 90 {
		t.Errorf("latitude out of range: %f", geo.LatDeg)
	}
	if geo.LonDeg < -180 || geo.LonDeg > 180 {
		t.Errorf("longitude out of range: %f", geo.LonDeg)
	}
	if geo.AltKm < 300 || geo.AltKm > 500 {
		t.Errorf("altitude %f km outside plausible ISS range", geo.AltKm)
	}
}

// TestECIToGeodeticPoles checks the conversion near the pole, where the
// Bowring altitude branch switches to the sin-latitude form.
func TestECIToGeodeticPoles(t *testing.T) {
	// Position directly over the north pole at ISS-like radius.
	sv := StateVector{X: 0, Y: 0, Z: 6778.0}
	geo := ECIToGeodetic(sv, time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC))

	if math.Abs(geo.LatDeg-90) > 1e-6 {
		t.Errorf("latitude = %f, want 90", geo.LatDeg)
	}
	// Polar radius is ~6356.75 km, so altitude ≈ 6778 - 6356.75.
	if math.Abs(geo.AltKm-(6778.0-6356.7523142)) > 0.01 {
		t.Errorf("altitude = %f km, want ≈421.2", geo.AltKm)
	}
}

// TestGeodeticEquator verifies latitude 0 and altitude against the
// semi-major axis for an equatorial Earth-fixed position.
func TestGeodeticEquator(t *testing.T) {
	geo := ecefToGeodetic(6778.0, 0, 0)

	if math.Abs(geo.LatDeg) > 1e-9 {
		t.Errorf("latitude = %f, want 0", geo.LatDeg)
	}
	if math.Abs(geo.LonDeg) > 1e-9 {
		t.Errorf("longitude = %f, want 0", geo.LonDeg)
	}
	if math.Abs(geo.AltKm-(6778.0-wgs84A)) > 1e-6 {
		t.Errorf("altitude = %f, want %f", geo.AltKm, 6778.0-wgs84A)
	}
}
