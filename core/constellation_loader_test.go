package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func loadString(t *testing.T, input string) (*ConstellationPlan, error) {
	t.Helper()
	return LoadConstellation(NewNetwork(), strings.NewReader(input), time.Unix(0, 0).UTC())
}

func TestLoadConstellation_FullPlan(t *testing.T) {
	input := strings.Join([]string{
		"# relay chain over the equator",
		"",
		"SAT,S1,0,0,1000",
		"SAT,S2,0,45,1000",
		"SAT,S3,0,90,1000",
		"ROUTE,0,0,0,90",
	}, "\n")

	plan, err := loadString(t, input)
	if err != nil {
		t.Fatalf("LoadConstellation: %v", err)
	}

	if got := strings.Join(plan.SatelliteIDs, ","); got != "S1,S2,S3" {
		t.Errorf("SatelliteIDs = %q, want S1,S2,S3", got)
	}
	if plan.Network.Len() != 3 {
		t.Errorf("network size = %d, want 3", plan.Network.Len())
	}
	if plan.Request == nil {
		t.Fatalf("plan has no route request")
	}
	if plan.Request.Finish.Longitude != 90 || plan.Request.Finish.Altitude != 0 {
		t.Errorf("finish = %+v, want lon 90 on the surface", plan.Request.Finish)
	}

	path, err := plan.Network.Route(plan.Request.Start, plan.Request.Finish)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if got := strings.Join(PathIDs(path), ","); got != "S1,S2,S3" {
		t.Errorf("path = %q, want S1,S2,S3", got)
	}
}

func TestLoadConstellation_AltitudeDefaultsToZero(t *testing.T) {
	plan, err := loadString(t, "SAT,G1,10,20\n")
	if err != nil {
		t.Fatalf("LoadConstellation: %v", err)
	}
	sats := plan.Network.Satellites()
	if len(sats) != 1 || sats[0].Coordinate.Altitude != 0 {
		t.Errorf("satellites = %+v, want one at altitude 0", sats)
	}
}

func TestLoadConstellation_LastRouteWins(t *testing.T) {
	input := "SAT,S1,0,0,1000\nROUTE,1,1,2,2\nROUTE,3,3,4,4\n"

	plan, err := loadString(t, input)
	if err != nil {
		t.Fatalf("LoadConstellation: %v", err)
	}
	if plan.Request == nil || plan.Request.Start.Latitude != 3 {
		t.Errorf("request = %+v, want the second ROUTE record", plan.Request)
	}
}

func TestLoadConstellation_NoRouteRecord(t *testing.T) {
	plan, err := loadString(t, "SAT,S1,0,0,1000\n")
	if err != nil {
		t.Fatalf("LoadConstellation: %v", err)
	}
	if plan.Request != nil {
		t.Errorf("request = %+v, want nil when no ROUTE line appears", plan.Request)
	}
}

func TestLoadConstellation_BadRecords(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unknown record type", "STA,S1,0,0,1000\n"},
		{"non-numeric latitude", "SAT,S1,abc,0,1000\n"},
		{"SAT arity", "SAT,S1\n"},
		{"ROUTE arity", "ROUTE,0,0,0\n"},
		{"TLE arity", "TLE,ISS\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadString(t, tc.input)
			if !errors.Is(err, ErrBadRecord) {
				t.Errorf("err = %v, want ErrBadRecord", err)
			}
			if err != nil && !strings.Contains(err.Error(), "line 1") {
				t.Errorf("err = %v, want the offending line number", err)
			}
		})
	}
}

func TestLoadConstellation_BelowSurfaceSatellite(t *testing.T) {
	_, err := loadString(t, "SAT,S1,0,0,-7000\n")
	if !errors.Is(err, ErrNonPositiveRadius) {
		t.Errorf("err = %v, want the geometry domain error", err)
	}
}

func TestLoadConstellation_DuplicateID(t *testing.T) {
	_, err := loadString(t, "SAT,S1,0,0,1000\nSAT,S1,10,10,500\n")
	if !errors.Is(err, ErrSatelliteExists) {
		t.Errorf("err = %v, want ErrSatelliteExists", err)
	}
	if err != nil && !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 in the message", err)
	}
}

func TestLoadConstellation_TLERecord(t *testing.T) {
	at := time.Date(2021, time.October, 2, 14, 11, 0, 0, time.UTC)
	input := "TLE,ISS," + issLine1 + "," + issLine2 + "\n"

	plan, err := LoadConstellation(NewNetwork(), strings.NewReader(input), at)
	if err != nil {
		t.Fatalf("LoadConstellation: %v", err)
	}
	sats := plan.Network.Satellites()
	if len(sats) != 1 || sats[0].ID != "ISS" {
		t.Fatalf("satellites = %+v, want exactly ISS", sats)
	}
	if alt := sats[0].Coordinate.Altitude; alt < 300 || alt > 500 {
		t.Errorf("ISS altitude = %v km, want a LEO altitude", alt)
	}
}
