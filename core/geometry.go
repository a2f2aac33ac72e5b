package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/relay-router/model"
)

// EarthRadiusKm is the mean Earth radius used for all geometry in the
// routing layer (kilometres). Satellite altitudes are measured from this
// sphere.
const EarthRadiusKm = 6371.0

var (
	ErrNonPositiveRadius    = errors.New("spherical radius must be positive")
	ErrBelowReferenceSphere = errors.New("point lies below the reference sphere")
)

// SphericalPosition expresses a point relative to the centre of the
// reference sphere: polar angle theta and azimuth phi in radians, radius in
// kilometres. It is always derived from a GeodeticCoordinate via ToSpherical
// and never set directly.
type SphericalPosition struct {
	Theta  float64
	Phi    float64
	Radius float64
}

// HorizonAngle caches the sine and cosine of the angle between a point and
// its own horizon, as seen from the centre of the sphere. Two points can see
// each other exactly when their angular separation is smaller than the sum
// of their horizon angles.
type HorizonAngle struct {
	Sin float64
	Cos float64
}

// ToSpherical converts a geodetic coordinate to the spherical frame used by
// the visibility test.
func ToSpherical(c model.GeodeticCoordinate) SphericalPosition {
	const degToRad = math.Pi / 180.0
	return SphericalPosition{
		Theta:  (90.0 - c.Latitude) * degToRad,
		Phi:    c.Longitude * degToRad,
		Radius: EarthRadiusKm + c.Altitude,
	}
}

// NewHorizonAngle derives the horizon angle for a spherical position.
// Positions on or above the surface are valid; anything below yields an
// undefined horizon and is rejected.
func NewHorizonAngle(p SphericalPosition) (HorizonAngle, error) {
	if p.Radius <= 0 {
		return HorizonAngle{}, fmt.Errorf("%w: radius %v km", ErrNonPositiveRadius, p.Radius)
	}
	cos := EarthRadiusKm / p.Radius
	if cos > 1 || cos < -1 {
		return HorizonAngle{}, fmt.Errorf("%w: radius %v km", ErrBelowReferenceSphere, p.Radius)
	}
	return HorizonAngle{
		Sin: math.Sqrt(1 - cos*cos),
		Cos: cos,
	}, nil
}

// LineOfSight reports whether two points can see each other without the
// reference sphere blocking the view. The angular separation psi between the
// points (spherical law of cosines) must stay below the sum of the two
// horizon angles, tested in cosine space:
//
//	cos(ha+hb) < cos(psi)
func LineOfSight(pa SphericalPosition, ha HorizonAngle, pb SphericalPosition, hb HorizonAngle) bool {
	cosSumHorizon := ha.Cos*hb.Cos - ha.Sin*hb.Sin
	cosPsi := math.Cos(pa.Theta)*math.Cos(pb.Theta) +
		math.Sin(pa.Theta)*math.Sin(pb.Theta)*math.Cos(pa.Phi-pb.Phi)
	return cosSumHorizon < cosPsi
}

// VisibleFrom reports whether a satellite is in line of sight of an
// arbitrary coordinate, typically a ground point. The probe geometry is
// computed on the fly; no transient Satellite is involved.
func VisibleFrom(ground model.GeodeticCoordinate, target *Satellite) bool {
	p := ToSpherical(ground)
	h, err := NewHorizonAngle(p)
	if err != nil {
		return false
	}
	return LineOfSight(p, h, target.spherical, target.horizon)
}
