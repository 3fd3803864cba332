package graph

import "fmt"

// Edge is an undirected weighted edge between V1 and V2.
type Edge struct {
	V1     int
	V2     int
	Weight int64
}

// Graph is a mutable undirected weighted graph with a preallocated vertex count.
// The zero value is an empty graph with no vertices; call SetVertexNum before
// adding edges.
type Graph struct {
	edges []Edge
	adj   [][]int // vertex -> incident edge indices
}

// New creates a graph with n vertices and no edges.
func New(n int) *Graph {
	g := &Graph{}
	g.SetVertexNum(n)
	return g
}

// Clear removes all vertices and edges while keeping allocated capacity.
func (g *Graph) Clear() {
	g.edges = g.edges[:0]
	for i := range g.adj {
		g.adj[i] = g.adj[i][:0]
	}
	g.adj = g.adj[:0]
}

// SetVertexNum resizes the vertex set to n. Existing edges are kept, so this is
// normally called right after Clear.
func (g *Graph) SetVertexNum(n int) {
	if n < 0 {
		panic(fmt.Sprintf("graph: negative vertex count %d", n))
	}
	if cap(g.adj) >= n {
		old := len(g.adj)
		g.adj = g.adj[:n]
		for i := old; i < n; i++ {
			g.adj[i] = g.adj[i][:0]
		}
		return
	}
	adj := make([][]int, n)
	copy(adj, g.adj)
	g.adj = adj
}

// AddEdge adds an undirected edge and returns its index.
// It panics if either endpoint is not a vertex of the graph.
func (g *Graph) AddEdge(u, v int, w int64) int {
	if u < 0 || u >= len(g.adj) || v < 0 || v >= len(g.adj) {
		panic(fmt.Sprintf("graph: edge (%d,%d) outside vertex range [0,%d)", u, v, len(g.adj)))
	}
	id := len(g.edges)
	g.edges = append(g.edges, Edge{V1: u, V2: v, Weight: w})
	g.adj[u] = append(g.adj[u], id)
	if v != u {
		g.adj[v] = append(g.adj[v], id)
	}
	return id
}

// Edge returns the edge with the given index.
func (g *Graph) Edge(id int) Edge { return g.edges[id] }

// Edges returns the edge arena. The slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.adj) }

// Adjacent returns the indices of edges incident to v. The slice must not be modified.
func (g *Graph) Adjacent(v int) []int { return g.adj[v] }

// Degree returns the number of edges incident to v.
func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

// Other returns the endpoint of edge id opposite to v.
func (g *Graph) Other(id, v int) int {
	e := g.edges[id]
	if e.V1 == v {
		return e.V2
	}
	return e.V1
}

// TotalWeight sums the weights of the given edges.
func (g *Graph) TotalWeight(ids []int) int64 {
	var total int64
	for _, id := range ids {
		total += g.edges[id].Weight
	}
	return total
}
