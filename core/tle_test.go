package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

// An ISS element set; inclination 51.6 deg, ~420 km altitude.
const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestSatelliteFromTLE(t *testing.T) {
	at := time.Date(2021, time.October, 2, 14, 11, 0, 0, time.UTC)

	sat, err := SatelliteFromTLE("ISS", issLine1, issLine2, at)
	if err != nil {
		t.Fatalf("SatelliteFromTLE: %v", err)
	}

	if sat.ID != "ISS" {
		t.Errorf("ID = %q, want ISS", sat.ID)
	}
	if alt := sat.Coordinate.Altitude; alt < 300 || alt > 500 {
		t.Errorf("altitude = %v km, want a LEO altitude near 420 km", alt)
	}
	if lat := math.Abs(sat.Coordinate.Latitude); lat > 52 {
		t.Errorf("|latitude| = %v, cannot exceed the 51.6 deg inclination", lat)
	}
	if lon := sat.Coordinate.Longitude; lon < -180 || lon > 180 {
		t.Errorf("longitude = %v out of range", lon)
	}
}

func TestSatelliteFromTLE_Deterministic(t *testing.T) {
	at := time.Date(2021, time.October, 2, 14, 11, 0, 0, time.UTC)

	a, err := SatelliteFromTLE("ISS", issLine1, issLine2, at)
	if err != nil {
		t.Fatalf("SatelliteFromTLE: %v", err)
	}
	b, err := SatelliteFromTLE("ISS", issLine1, issLine2, at)
	if err != nil {
		t.Fatalf("SatelliteFromTLE: %v", err)
	}
	if a.Coordinate != b.Coordinate {
		t.Errorf("same TLE and instant gave different coordinates: %+v vs %+v", a.Coordinate, b.Coordinate)
	}
}

func TestSatelliteFromTLE_BadLines(t *testing.T) {
	at := time.Now()

	if _, err := SatelliteFromTLE("X", "garbage", issLine2, at); !errors.Is(err, ErrBadTLE) {
		t.Errorf("bad line 1: err = %v, want ErrBadTLE", err)
	}
	if _, err := SatelliteFromTLE("X", issLine1, "2 truncated", at); !errors.Is(err, ErrBadTLE) {
		t.Errorf("bad line 2: err = %v, want ErrBadTLE", err)
	}
}
