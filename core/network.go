package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/relay-router/model"
)

var ErrSatelliteExists = errors.New("satellite already exists")

// EventType indicates what kind of change happened in the network.
type EventType int

const (
	EventSatelliteConnected EventType = iota
)

// Event is emitted to subscribers after a successful mutation.
type Event struct {
	Type       EventType
	Satellite  string
	Neighbours []string
}

// MetricsRecorder receives count updates whenever the constellation
// changes. Updates are delivered under the network's lock so they arrive in
// mutation order; implementations must be fast and must not call back into
// the Network. The zero value of the Network carries no recorder; wire one
// with WithMetricsRecorder.
type MetricsRecorder interface {
	SetConstellationCounts(satellites, links int)
}

// Network owns the full set of satellites and the visibility graph between
// them. All access is guarded by an RWMutex: Connect and Reset take the
// write lock, queries take the read lock, so a loaded network can serve
// concurrent Route calls safely.
type Network struct {
	mu sync.RWMutex

	satellites map[string]*Satellite

	subs    []func(Event)
	metrics MetricsRecorder
}

// NetworkOption configures a Network at construction time.
type NetworkOption func(*Network)

// WithMetricsRecorder attaches an optional recorder for satellite and link
// counts.
func WithMetricsRecorder(m MetricsRecorder) NetworkOption {
	return func(n *Network) { n.metrics = m }
}

// NewNetwork constructs an empty network.
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{satellites: make(map[string]*Satellite)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers a callback invoked after every successful Connect.
// Callbacks run synchronously on the mutating goroutine and must not call
// back into the Network.
func (n *Network) Subscribe(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Connect adds a satellite to the network. Its neighbour set becomes the
// set of current members visible from its coordinate, and every one of
// those members gains the new satellite as a neighbour in return, keeping
// the relation symmetric. The satellite is not yet a member while its
// visibility is computed, so it never sees itself.
func (n *Network) Connect(sat *Satellite) error {
	if sat == nil || sat.ID == "" {
		return ErrEmptySatelliteID
	}

	n.mu.Lock()
	if _, exists := n.satellites[sat.ID]; exists {
		n.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSatelliteExists, sat.ID)
	}

	visible := n.visibleLocked(sat.Coordinate)
	neighbours := make(map[string]struct{}, len(visible))
	for id, member := range visible {
		neighbours[id] = struct{}{}
		member.ConnectWith(sat)
	}
	sat.setNeighbours(neighbours)
	n.satellites[sat.ID] = sat

	event := Event{
		Type:       EventSatelliteConnected,
		Satellite:  sat.ID,
		Neighbours: sat.Neighbors(),
	}
	subs := append([]func(Event){}, n.subs...)

	// Gauges are published under the lock so concurrent Connects cannot
	// apply their counts out of order and leave a stale value behind.
	if n.metrics != nil {
		satCount, linkCount := n.countsLocked()
		n.metrics.SetConstellationCounts(satCount, linkCount)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
	return nil
}

// VisibleSatellitesAt returns every member satellite in line of sight of
// the given coordinate. Pure query; the probe point is never added to the
// network.
func (n *Network) VisibleSatellitesAt(c model.GeodeticCoordinate) map[string]*Satellite {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.visibleLocked(c)
}

func (n *Network) visibleLocked(c model.GeodeticCoordinate) map[string]*Satellite {
	visible := make(map[string]*Satellite)
	for id, sat := range n.satellites {
		if VisibleFrom(c, sat) {
			visible[id] = sat
		}
	}
	return visible
}

// Reset recomputes every member's neighbour set from scratch against the
// current membership. O(n²), acceptable at constellation scale.
func (n *Network) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sat := range n.satellites {
		sat.setNeighbours(make(map[string]struct{}))
	}
	ids := make([]string, 0, len(n.satellites))
	for id := range n.satellites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, idA := range ids {
		a := n.satellites[idA]
		for _, idB := range ids[i+1:] {
			b := n.satellites[idB]
			if a.LineOfSightTo(b) {
				a.ConnectWith(b)
				b.ConnectWith(a)
			}
		}
	}

	if n.metrics != nil {
		satCount, linkCount := n.countsLocked()
		n.metrics.SetConstellationCounts(satCount, linkCount)
	}
}

// Satellites returns an ID-sorted snapshot of the current membership.
func (n *Network) Satellites() []*Satellite {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*Satellite, 0, len(n.satellites))
	for _, sat := range n.satellites {
		out = append(out, sat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of member satellites.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.satellites)
}

// countsLocked tallies members and undirected edges. Callers hold the lock.
func (n *Network) countsLocked() (satellites, links int) {
	for _, sat := range n.satellites {
		links += len(sat.neighbours)
	}
	return len(n.satellites), links / 2
}
