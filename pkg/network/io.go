package network

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// =============================================================================
// Node-Link Serialization Format
// =============================================================================

// NodeLink is the canonical serialization format for similarity networks.
// It matches the node-link convention used by external network-construction
// tools: a flat node list plus a source/target edge list, keyed by the same
// identifiers as the sample rows of the feature matrices.
type NodeLink struct {
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges" bson:"edges"`
}

// NodeRecord is the wire form of a single node.
type NodeRecord struct {
	ID   string         `json:"id" bson:"id"`
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// EdgeRecord is the wire form of a single undirected edge.
type EdgeRecord struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a Graph to JSON bytes.
// Nodes are sorted by ID for deterministic output.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a Graph as node-link JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a node-link JSON file and returns the decoded Graph.
// Returns validation errors for malformed graphs (duplicate node IDs, edges
// referencing unknown nodes).
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a node-link JSON graph from an io.Reader.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	out := ToNodeLink(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode node-link graph")
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var data NodeLink
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode node-link graph")
	}
	return FromNodeLink(data)
}

// FromNodeLink converts the wire format into a validated Graph.
func FromNodeLink(data NodeLink) (*Graph, error) {
	g := New(nil)
	for _, n := range data.Nodes {
		if err := g.AddNode(Node{ID: n.ID, Meta: n.Meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %q", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(Edge{From: e.Source, To: e.Target}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %s-%s", e.Source, e.Target)
		}
	}
	return g, nil
}

// ToNodeLink converts a Graph into the wire format with deterministic node
// ordering.
func ToNodeLink(g *Graph) NodeLink {
	out := NodeLink{
		Nodes: make([]NodeRecord, 0, g.NodeCount()),
		Edges: make([]EdgeRecord, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		rec := NodeRecord{ID: n.ID}
		if len(n.Meta) > 0 {
			rec.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, rec)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, EdgeRecord{Source: e.From, Target: e.To})
	}
	return out
}
