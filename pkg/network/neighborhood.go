package network

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// NeighborhoodIndex maps every node to the set of nodes reachable within a
// fixed topological radius, including the node itself. The index is computed
// once per (graph, radius) pair and is read-only afterwards, so it can be
// shared across all scoring workers without locking.
type NeighborhoodIndex struct {
	radius  int
	nodeIDs []string            // sorted
	members map[string][]string // nodeID -> sorted member IDs (includes self)
}

// BuildNeighborhoods computes the neighborhood of every node by
// breadth-first expansion up to radius hops. Radius 0 yields the trivial
// self-only neighborhood for every node.
//
// Returns an INVALID_CONFIG error for a negative radius and an INVALID_GRAPH
// error when the graph fails validation (an edge referencing a non-existent
// node).
func BuildNeighborhoods(g *Graph, radius int) (*NeighborhoodIndex, error) {
	if err := errors.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "graph validation failed")
	}

	idx := &NeighborhoodIndex{
		radius:  radius,
		nodeIDs: g.NodeIDs(),
		members: make(map[string][]string, g.NodeCount()),
	}
	for _, id := range idx.nodeIDs {
		idx.members[id] = bfsWithin(g, id, radius)
	}
	return idx, nil
}

// bfsWithin collects every node within radius hops of start, start
// included, and returns them sorted.
func bfsWithin(g *Graph, start string, radius int) []string {
	visited := map[string]bool{start: true}
	frontier := []string{start}

	for hop := 0; hop < radius && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range g.Neighbors(id) {
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Radius returns the radius the index was built with.
func (x *NeighborhoodIndex) Radius() int { return x.radius }

// NodeIDs returns all indexed node identifiers sorted lexicographically.
// The returned slice is owned by the index and must not be modified.
func (x *NeighborhoodIndex) NodeIDs() []string { return x.nodeIDs }

// Members returns the sorted neighborhood of the given node, including the
// node itself. Returns nil for an unknown node. The returned slice is owned
// by the index and must not be modified.
func (x *NeighborhoodIndex) Members(id string) []string { return x.members[id] }

// Size returns the number of indexed nodes.
func (x *NeighborhoodIndex) Size() int { return len(x.nodeIDs) }

// neighborhoodEnvelope is the serialized form of a NeighborhoodIndex, used
// for caching computed indexes between runs.
type neighborhoodEnvelope struct {
	Radius  int                 `json:"radius"`
	Members map[string][]string `json:"members"`
}

// MarshalJSON encodes the index for caching.
func (x *NeighborhoodIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(neighborhoodEnvelope{Radius: x.radius, Members: x.members})
}

// UnmarshalJSON decodes a cached index and rebuilds the sorted node list.
func (x *NeighborhoodIndex) UnmarshalJSON(data []byte) error {
	var env neighborhoodEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	x.radius = env.Radius
	x.members = env.Members
	x.nodeIDs = slices.Sorted(maps.Keys(env.Members))
	return nil
}
