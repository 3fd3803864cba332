// Package graph provides the index-addressed weighted graph the router solves on.
//
// Vertices are plain integers in [0, VertexCount()) (the router obtains them from
// a [codec.Codec]), and edges live in a flat arena addressed by edge index. Each
// vertex keeps the indices of its incident edges, so traversals never chase
// pointers:
//
//	g := graph.New(4)
//	e := g.AddEdge(0, 1, 2)
//	for _, id := range g.Adjacent(0) {
//	    other := g.Other(id, 0)
//	    _ = other
//	}
//	g.Edge(e).Weight // 2
//
// The graph is undirected. Parallel edges are allowed; the Steiner solvers only
// ever keep the cheapest of them.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Concurrent reads are fine once
// building is complete.
//
// [codec.Codec]: github.com/matzehuels/cellroute/pkg/codec
package graph
