package steiner

import (
	"fmt"
	"math"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/cellroute/pkg/graph"
)

// KMB is the Kou-Markowsky-Berman Steiner approximation built on gonum's
// shortest-path and spanning-tree routines. It runs one full Dijkstra per
// terminal, so it is slower than [ShortestPathHeuristic] on nets with many pins,
// but its result does not depend on terminal order.
type KMB struct{}

// Solve implements [Solver].
func (KMB) Solve(g *graph.Graph, terminals []int) ([]int, error) {
	terms, err := normalizeTerminals(g, terminals)
	if err != nil {
		return nil, err
	}
	if len(terms) == 1 {
		return []int{}, nil
	}

	wg, cheapest := toGonum(g)

	shortest := make([]path.Shortest, len(terms))
	for i, t := range terms {
		shortest[i] = path.DijkstraFrom(simple.Node(t), wg)
	}

	// Metric closure over the terminals, indexed by terminal position.
	closure := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range terms {
		closure.AddNode(simple.Node(i))
	}
	for i := range terms {
		for j := i + 1; j < len(terms); j++ {
			w := shortest[i].WeightTo(int64(terms[j]))
			if math.IsInf(w, 1) {
				if i == 0 {
					return nil, fmt.Errorf("%w: terminal %d cannot reach terminal %d", ErrUnreachable, terms[j], terms[0])
				}
				continue
			}
			closure.SetWeightedEdge(closure.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
		}
	}

	mst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(mst, closure)

	var edges []int
	for _, e := range gonumgraph.WeightedEdgesOf(mst.WeightedEdges()) {
		from, to := e.From().ID(), e.To().ID()
		nodes, _ := shortest[from].To(int64(terms[to]))
		for k := 1; k < len(nodes); k++ {
			edges = append(edges, cheapest[pairKey(nodes[k-1].ID(), nodes[k].ID())])
		}
	}
	return Prune(g, edges, terms), nil
}

type pair struct{ lo, hi int64 }

func pairKey(a, b int64) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// toGonum copies g into a gonum graph, keeping only the cheapest of parallel
// edges. The returned map resolves a vertex pair back to that edge's index.
func toGonum(g *graph.Graph) (*simple.WeightedUndirectedGraph, map[pair]int) {
	wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for v := 0; v < g.VertexCount(); v++ {
		wg.AddNode(simple.Node(v))
	}
	cheapest := make(map[pair]int, g.EdgeCount())
	for id, e := range g.Edges() {
		if e.V1 == e.V2 {
			continue
		}
		key := pairKey(int64(e.V1), int64(e.V2))
		if prev, ok := cheapest[key]; ok && g.Edge(prev).Weight <= e.Weight {
			continue
		}
		cheapest[key] = id
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e.V1), simple.Node(e.V2), float64(e.Weight)))
	}
	return wg, cheapest
}
