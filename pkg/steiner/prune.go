package steiner

import (
	"cmp"
	"slices"

	"github.com/matzehuels/cellroute/pkg/graph"
)

// Prune turns an edge set connecting the terminals into a tree without useless
// branches. It keeps a minimum spanning forest of the edge set (dropping
// duplicates, self loops and cycle-closing edges) and then repeatedly removes
// leaves that are not terminals. The result is sorted by edge index.
func Prune(g *graph.Graph, edges []int, terminals []int) []int {
	ids := slices.Clone(edges)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(g.Edge(a).Weight, g.Edge(b).Weight)
	})

	uf := newUnionFind()
	kept := ids[:0]
	for _, id := range ids {
		e := g.Edge(id)
		if e.V1 == e.V2 {
			continue
		}
		if uf.union(e.V1, e.V2) {
			kept = append(kept, id)
		}
	}

	isTerminal := make(map[int]bool, len(terminals))
	for _, t := range terminals {
		isTerminal[t] = true
	}
	incident := make(map[int][]int)
	for _, id := range kept {
		e := g.Edge(id)
		incident[e.V1] = append(incident[e.V1], id)
		incident[e.V2] = append(incident[e.V2], id)
	}

	removed := make(map[int]bool)
	degree := make(map[int]int, len(incident))
	var leaves []int
	for v, es := range incident {
		degree[v] = len(es)
		if len(es) == 1 && !isTerminal[v] {
			leaves = append(leaves, v)
		}
	}
	for len(leaves) > 0 {
		v := leaves[len(leaves)-1]
		leaves = leaves[:len(leaves)-1]
		if degree[v] != 1 {
			continue
		}
		for _, id := range incident[v] {
			if removed[id] {
				continue
			}
			removed[id] = true
			degree[v]--
			u := g.Other(id, v)
			degree[u]--
			if degree[u] == 1 && !isTerminal[u] {
				leaves = append(leaves, u)
			}
			break
		}
	}

	out := make([]int, 0, len(kept)-len(removed))
	for _, id := range kept {
		if !removed[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// unionFind is a disjoint-set forest over sparse vertex ids.
type unionFind struct {
	parent map[int]int
	rank   map[int]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[int]int), rank: make(map[int]int)}
}

func (u *unionFind) find(v int) int {
	p, ok := u.parent[v]
	if !ok {
		u.parent[v] = v
		return v
	}
	if p == v {
		return v
	}
	root := u.find(p)
	u.parent[v] = root
	return root
}

// union merges the sets of a and b and reports whether they were distinct.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}
