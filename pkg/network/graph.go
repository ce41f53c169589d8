package network

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by [Graph.AddEdge] and [Graph.Validate]
	// when an edge references a node that does not exist in the graph.
	ErrUnknownEndpoint = errors.New("edge references unknown node")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// It is commonly used to carry sample annotations (size, source table) or
// provenance of the network-construction step. Metadata maps are never nil -
// they are automatically initialized to empty maps when needed.
type Metadata map[string]any

// Node represents a vertex in the similarity network. Each node corresponds
// to exactly one sample row in the feature matrices supplied by the caller.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID   string   // Unique identifier, matches feature-matrix sample keys
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge represents an undirected connection between two nodes. From/To
// ordering carries no meaning beyond serialization; the graph indexes both
// directions. Self-loops are tolerated and ignored by neighborhood
// expansion.
type Edge struct {
	From string   // One endpoint node ID
	To   string   // Other endpoint node ID
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// Graph is an undirected node-link graph with adjacency indexing. It is the
// input boundary of the enrichment engine: built once from external data,
// validated, then treated as read-only.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent mutation; once construction is complete
// it may be shared freely across goroutines for reads.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	adjacent map[string][]string // nodeID -> neighbor IDs
	meta     Metadata
}

// New creates an empty Graph with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		adjacent: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if a node with the same ID already exists.
// The node's Meta field is automatically initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge adds an undirected edge between two existing nodes. Returns
// ErrUnknownEndpoint if either endpoint does not exist. Self-loops are
// stored but contribute nothing to adjacency. Duplicate edges are stored as
// given; neighborhood expansion deduplicates naturally.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownEndpoint
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	if e.From != e.To {
		g.adjacent[e.From] = append(g.adjacent[e.From], e.To)
		g.adjacent[e.To] = append(g.adjacent[e.To], e.From)
	}
	return nil
}

// Node returns the node with the given ID, or nil if it does not exist.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	ids := g.NodeIDs()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node identifiers sorted lexicographically.
func (g *Graph) NodeIDs() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Neighbors returns the IDs of nodes directly connected to id.
// The returned slice is owned by the graph and must not be modified.
func (g *Graph) Neighbors(id string) []string {
	return g.adjacent[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Validate checks the structural invariants of the graph: every edge must
// reference existing nodes. Returns ErrUnknownEndpoint on the first
// violation. A valid graph is safe to hand to BuildNeighborhoods.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrUnknownEndpoint
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrUnknownEndpoint
		}
	}
	return nil
}
