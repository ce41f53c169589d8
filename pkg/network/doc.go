// Package network provides the undirected similarity-network type consumed
// by the enrichment engine, together with its node-link JSON serialization
// and the radius-bounded neighborhood index.
//
// # Overview
//
// A [Graph] is a set of uniquely identified nodes joined by undirected
// edges. Graphs arrive from an external network-construction step and are
// immutable for the duration of an analysis run: the engine only ever reads
// them. [Graph.Validate] checks the structural invariants (edges reference
// existing nodes) before any computation starts.
//
// [BuildNeighborhoods] precomputes, for every node, the set of nodes
// reachable within a fixed number of hops. The resulting
// [NeighborhoodIndex] is computed once per (graph, radius) pair and shared
// read-only by all downstream consumers, so repeated per-feature scoring
// never re-walks the graph.
//
// # Example
//
//	g := network.New(nil)
//	g.AddNode(network.Node{ID: "a"})
//	g.AddNode(network.Node{ID: "b"})
//	g.AddEdge(network.Edge{From: "a", To: "b"})
//
//	idx, err := network.BuildNeighborhoods(g, 1)
//	if err != nil {
//	    return err
//	}
//	members := idx.Members("a") // ["a", "b"]
package network
