package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/relay-router/model"
)

var ErrBadTLE = errors.New("malformed TLE line pair")

// SatelliteFromTLE builds a Satellite from a two-line element set evaluated
// at a single instant. The orbit is SGP4-propagated to `at`, converted to an
// Earth-fixed position, and projected onto the geodetic frame of the
// reference sphere. The resulting satellite is frozen: the network never
// re-propagates it.
func SatelliteFromTLE(id, line1, line2 string, at time.Time) (*Satellite, error) {
	if err := checkTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("satellite %q: %w", id, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)

	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	coord, err := geodeticFromECEF(posECEF.X, posECEF.Y, posECEF.Z)
	if err != nil {
		return nil, fmt.Errorf("satellite %q: %w", id, err)
	}
	return NewSatellite(id, coord)
}

// geodeticFromECEF projects an Earth-fixed position in kilometres onto the
// reference sphere's geodetic frame.
func geodeticFromECEF(x, y, z float64) (model.GeodeticCoordinate, error) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r <= 0 {
		return model.GeodeticCoordinate{}, fmt.Errorf("%w: degenerate position", ErrNonPositiveRadius)
	}
	const radToDeg = 180.0 / math.Pi
	return model.GeodeticCoordinate{
		Latitude:  math.Asin(z/r) * radToDeg,
		Longitude: math.Atan2(y, x) * radToDeg,
		Altitude:  r - EarthRadiusKm,
	}, nil
}

func checkTLELines(line1, line2 string) error {
	if !strings.HasPrefix(line1, "1 ") || len(line1) < 69 {
		return fmt.Errorf("%w: line 1", ErrBadTLE)
	}
	if !strings.HasPrefix(line2, "2 ") || len(line2) < 69 {
		return fmt.Errorf("%w: line 2", ErrBadTLE)
	}
	return nil
}
