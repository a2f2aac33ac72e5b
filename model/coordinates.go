package model

import (
	"fmt"
	"math"
)

// GeodeticCoordinate locates a point by latitude/longitude in degrees and
// altitude in kilometres above the reference sphere. A zero Altitude means
// the point sits on the surface.
type GeodeticCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// Validate rejects coordinates the routing geometry cannot work with.
// Altitude is range-checked later against the reference sphere; here we only
// require finite numbers and a plausible latitude/longitude.
func (c GeodeticCoordinate) Validate() error {
	for name, v := range map[string]float64{
		"latitude":  c.Latitude,
		"longitude": c.Longitude,
		"altitude":  c.Altitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// RouteRequest asks for a relay path between two ground points.
type RouteRequest struct {
	Start  GeodeticCoordinate `json:"start"`
	Finish GeodeticCoordinate `json:"finish"`
}

// Validate checks both endpoints. Endpoints are ground points: a negative
// altitude puts the horizon geometry out of its domain, so it is rejected
// here rather than surfacing later as an unreachable route.
func (r RouteRequest) Validate() error {
	if err := validateEndpoint(r.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := validateEndpoint(r.Finish); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}

func validateEndpoint(c GeodeticCoordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Altitude < 0 {
		return fmt.Errorf("altitude %v must not be negative", c.Altitude)
	}
	return nil
}
