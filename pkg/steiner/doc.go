// Package steiner computes approximate minimum Steiner trees on a [graph.Graph].
//
// A [Solver] receives a weighted graph and a set of terminal vertices and returns
// the indices of graph edges forming a tree that connects every terminal. Exact
// Steiner trees are NP-hard; both solvers here are classic 2-approximations:
//
//   - [ShortestPathHeuristic] grows a tree from one terminal and repeatedly
//     attaches the closest remaining terminal along a shortest path
//     (Takahashi-Matsuyama). It is the default: one bounded Dijkstra per
//     terminal and no intermediate graphs.
//   - [KMB] builds the metric closure over the terminals with gonum's Dijkstra,
//     takes its minimum spanning tree, expands every closure edge back into
//     graph edges and cleans the result up (Kou-Markowsky-Berman).
//
// Both results pass through [Prune], which drops cycles and non-terminal leaves.
//
// # Contract
//
//   - A single terminal yields an empty, non-nil edge list and a nil error.
//   - An empty terminal set yields [ErrNoTerminals].
//   - Terminals that cannot be mutually connected yield an error wrapping
//     [ErrUnreachable]. Callers treat this as "net unroutable", not as a fault.
//
// Duplicate terminals are ignored. Solvers are stateless and safe for concurrent
// use on distinct graphs.
//
// [graph.Graph]: github.com/matzehuels/cellroute/pkg/graph
package steiner
