package steiner

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/cellroute/pkg/graph"
)

var (
	// ErrNoTerminals is returned when the terminal set is empty.
	ErrNoTerminals = errors.New("steiner: no terminals")

	// ErrUnreachable is returned when some terminal cannot reach the others.
	ErrUnreachable = errors.New("steiner: terminals are not connected")
)

// Solver names accepted by [New].
const (
	SolverSPH = "sph"
	SolverKMB = "kmb"

	DefaultSolver = SolverSPH
)

// Solver computes an approximate minimum-weight tree spanning the terminals.
type Solver interface {
	Solve(g *graph.Graph, terminals []int) ([]int, error)
}

// New returns the solver registered under name. An empty name selects
// [DefaultSolver].
func New(name string) (Solver, error) {
	switch name {
	case "", SolverSPH:
		return ShortestPathHeuristic{}, nil
	case SolverKMB:
		return KMB{}, nil
	default:
		return nil, fmt.Errorf("unknown steiner solver %q (must be one of: %s, %s)", name, SolverSPH, SolverKMB)
	}
}

// normalizeTerminals validates the terminal set against g and returns it sorted
// and deduplicated.
func normalizeTerminals(g *graph.Graph, terminals []int) ([]int, error) {
	if len(terminals) == 0 {
		return nil, ErrNoTerminals
	}
	out := slices.Clone(terminals)
	slices.Sort(out)
	out = slices.Compact(out)
	if out[0] < 0 || out[len(out)-1] >= g.VertexCount() {
		return nil, fmt.Errorf("steiner: terminal outside vertex range [0,%d)", g.VertexCount())
	}
	return out, nil
}
