package steiner

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/matzehuels/cellroute/pkg/graph"
)

// ShortestPathHeuristic is the Takahashi-Matsuyama incremental Steiner heuristic.
// The zero value is ready to use.
type ShortestPathHeuristic struct{}

// Solve implements [Solver].
func (ShortestPathHeuristic) Solve(g *graph.Graph, terminals []int) ([]int, error) {
	terms, err := normalizeTerminals(g, terminals)
	if err != nil {
		return nil, err
	}
	if len(terms) == 1 {
		return []int{}, nil
	}

	n := g.VertexCount()
	pending := make([]bool, n)
	for _, t := range terms[1:] {
		pending[t] = true
	}
	remaining := len(terms) - 1

	inTree := make([]bool, n)
	inTree[terms[0]] = true
	tree := []int{terms[0]}

	dist := make([]int64, n)
	pred := make([]int, n)
	var edges []int

	for remaining > 0 {
		found := closestPending(g, tree, pending, dist, pred)
		if found < 0 {
			return nil, fmt.Errorf("%w: %d of %d terminals unreachable", ErrUnreachable, remaining, len(terms))
		}
		for v := found; !inTree[v]; {
			id := pred[v]
			edges = append(edges, id)
			inTree[v] = true
			tree = append(tree, v)
			if pending[v] {
				pending[v] = false
				remaining--
			}
			v = g.Other(id, v)
		}
	}
	return Prune(g, edges, terms), nil
}

// closestPending runs a multi-source Dijkstra from every tree vertex and stops at
// the first pending terminal it settles. pred holds the edge used to reach each
// settled vertex. Returns -1 when no pending terminal is reachable.
func closestPending(g *graph.Graph, tree []int, pending []bool, dist []int64, pred []int) int {
	for i := range dist {
		dist[i] = math.MaxInt64
		pred[i] = -1
	}
	pq := make(vertexQueue, 0, len(tree))
	for _, v := range tree {
		dist[v] = 0
		pq = append(pq, queued{v: v})
	}
	heap.Init(&pq)

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(queued)
		if cur.d > dist[cur.v] {
			continue
		}
		if pending[cur.v] {
			return cur.v
		}
		for _, id := range g.Adjacent(cur.v) {
			next := g.Other(id, cur.v)
			nd := cur.d + g.Edge(id).Weight
			if nd < dist[next] {
				dist[next] = nd
				pred[next] = id
				heap.Push(&pq, queued{v: next, d: nd})
			}
		}
	}
	return -1
}

type queued struct {
	v int
	d int64
}

// vertexQueue is a min-heap of vertices keyed by tentative distance.
type vertexQueue []queued

func (q vertexQueue) Len() int { return len(q) }
func (q vertexQueue) Less(i, j int) bool {
	if q[i].d != q[j].d {
		return q[i].d < q[j].d
	}
	return q[i].v < q[j].v
}
func (q vertexQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *vertexQueue) Push(x any)   { *q = append(*q, x.(queued)) }
func (q *vertexQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
