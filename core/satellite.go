package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalsfoundry/relay-router/model"
)

var ErrEmptySatelliteID = errors.New("empty satellite ID")

// Satellite is a named point in space together with its derived geometry.
// The spherical position and horizon angle are computed once at construction
// and never change. Neighbours are tracked as satellite IDs; the Network
// owns the records and resolves IDs during traversal, so there are no
// pointer cycles between satellites.
type Satellite struct {
	ID         string
	Coordinate model.GeodeticCoordinate

	spherical SphericalPosition
	horizon   HorizonAngle

	// neighbours is mutated by the Network only, under its write lock.
	neighbours map[string]struct{}
}

// NewSatellite derives the cached geometry eagerly. A coordinate below the
// reference sphere is a data error and is rejected here, before the
// satellite can enter any network.
func NewSatellite(id string, c model.GeodeticCoordinate) (*Satellite, error) {
	if id == "" {
		return nil, ErrEmptySatelliteID
	}
	spherical := ToSpherical(c)
	horizon, err := NewHorizonAngle(spherical)
	if err != nil {
		return nil, fmt.Errorf("satellite %q: %w", id, err)
	}
	return &Satellite{
		ID:         id,
		Coordinate: c,
		spherical:  spherical,
		horizon:    horizon,
		neighbours: make(map[string]struct{}),
	}, nil
}

// Spherical returns the cached spherical position.
func (s *Satellite) Spherical() SphericalPosition { return s.spherical }

// Horizon returns the cached horizon angle.
func (s *Satellite) Horizon() HorizonAngle { return s.horizon }

// LineOfSightTo reports whether the other satellite is visible from this
// one. O(1) over the cached geometry.
func (s *Satellite) LineOfSightTo(other *Satellite) bool {
	return LineOfSight(s.spherical, s.horizon, other.spherical, other.horizon)
}

// ConnectWith records other as a neighbour of s. The edge is
// one-directional; the Network establishes symmetry by calling ConnectWith
// on both ends.
func (s *Satellite) ConnectWith(other *Satellite) {
	s.neighbours[other.ID] = struct{}{}
}

// HasNeighbor reports whether the given satellite ID is in the neighbour
// set.
func (s *Satellite) HasNeighbor(id string) bool {
	_, ok := s.neighbours[id]
	return ok
}

// Neighbors returns a sorted snapshot of the neighbour IDs.
func (s *Satellite) Neighbors() []string {
	out := make([]string, 0, len(s.neighbours))
	for id := range s.neighbours {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// setNeighbours replaces the whole neighbour set. Used by the Network when
// connecting a new satellite or rebuilding the graph.
func (s *Satellite) setNeighbours(ids map[string]struct{}) {
	if ids == nil {
		ids = make(map[string]struct{})
	}
	s.neighbours = ids
}
