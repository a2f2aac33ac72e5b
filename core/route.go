package core

import (
	"container/heap"
	"sort"

	"github.com/signalsfoundry/relay-router/model"
)

// RouteFailure tags the reason a route could not be computed, so callers can
// branch without parsing messages.
type RouteFailure int

const (
	// StartUnreachable means no satellite is visible from the start point.
	StartUnreachable RouteFailure = iota
	// FinishUnreachable means no satellite is visible from the finish point.
	FinishUnreachable
	// NoPath means both endpoints see satellites, but the visibility graph
	// does not connect the two sets.
	NoPath
)

// RouteNotFoundError reports a failed route computation.
type RouteNotFoundError struct {
	Reason RouteFailure
}

func (e *RouteNotFoundError) Error() string {
	switch e.Reason {
	case StartUnreachable:
		return "no satellites in sight at start coordinates"
	case FinishUnreachable:
		return "no satellites in sight at finish coordinates"
	default:
		return "no route found between given coordinates"
	}
}

// searchEntry is a frontier item in the uniform-cost search. All edges have
// weight 1, so length is the hop count of the candidate path.
type searchEntry struct {
	length int
	seq    int // insertion sequence, breaks hop-count ties deterministically
	sat    *Satellite
	prefix []*Satellite // path up to, not including, sat
}

type searchQueue []*searchEntry

func (q searchQueue) Len() int { return len(q) }
func (q searchQueue) Less(i, j int) bool {
	if q[i].length != q[j].length {
		return q[i].length < q[j].length
	}
	return q[i].seq < q[j].seq
}
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue) Push(x any) { *q = append(*q, x.(*searchEntry)) }
func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Route computes a shortest hop-count relay chain from a satellite visible
// at start to one visible at finish. The returned slice is freshly
// allocated and owned by the caller; the network is not mutated.
//
// Ties in hop count break on insertion order, and both the seed set and
// neighbour expansions are pushed in ascending ID order, so a fixed input
// always yields the same path.
func (n *Network) Route(start, finish model.GeodeticCoordinate) ([]*Satellite, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	startSet := n.visibleLocked(start)
	if len(startSet) == 0 {
		return nil, &RouteNotFoundError{Reason: StartUnreachable}
	}
	finishSet := n.visibleLocked(finish)
	if len(finishSet) == 0 {
		return nil, &RouteNotFoundError{Reason: FinishUnreachable}
	}

	queue := &searchQueue{}
	heap.Init(queue)
	seq := 0
	push := func(length int, sat *Satellite, prefix []*Satellite) {
		heap.Push(queue, &searchEntry{length: length, seq: seq, sat: sat, prefix: prefix})
		seq++
	}

	for _, sat := range sortedByID(startSet) {
		push(0, sat, nil)
	}

	seen := make(map[string]struct{}, len(n.satellites))
	for queue.Len() > 0 {
		entry := heap.Pop(queue).(*searchEntry)
		if _, done := seen[entry.sat.ID]; done {
			continue
		}
		seen[entry.sat.ID] = struct{}{}

		path := make([]*Satellite, len(entry.prefix), len(entry.prefix)+1)
		copy(path, entry.prefix)
		path = append(path, entry.sat)

		if _, ok := finishSet[entry.sat.ID]; ok {
			return path, nil
		}

		for _, id := range entry.sat.Neighbors() {
			neighbour, ok := n.satellites[id]
			if !ok {
				continue
			}
			if _, done := seen[id]; done {
				continue
			}
			push(entry.length+1, neighbour, path)
		}
	}

	return nil, &RouteNotFoundError{Reason: NoPath}
}

// PathIDs projects a path onto its satellite IDs, in order.
func PathIDs(path []*Satellite) []string {
	ids := make([]string, len(path))
	for i, sat := range path {
		ids[i] = sat.ID
	}
	return ids
}

func sortedByID(set map[string]*Satellite) []*Satellite {
	out := make([]*Satellite, 0, len(set))
	for _, sat := range set {
		out = append(out, sat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
