package router

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/route"
	"github.com/matzehuels/cellroute/pkg/steiner"
)

// GraphApproxRouter routes nets with an approximate Steiner tree over a
// capacity-aware grid graph.
//
// A router is not safe for concurrent use: it reuses one
// [RoutingGraphManager] and mutates the store during [GraphApproxRouter.RerouteAll].
type GraphApproxRouter struct {
	store           Store
	layerFactors    []int64
	layerDirections []design.Direction

	solver  steiner.Solver
	logger  *log.Logger
	hooks   observability.RouterHooks
	padding Padding

	rgm *RoutingGraphManager
}

// Option configures a [GraphApproxRouter].
type Option func(*GraphApproxRouter)

// WithSolver sets the Steiner tree solver. The default is the shortest-path
// heuristic.
func WithSolver(s steiner.Solver) Option {
	return func(r *GraphApproxRouter) {
		if s != nil {
			r.solver = s
		}
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(r *GraphApproxRouter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPadding overrides the bounding box padding.
func WithPadding(p Padding) Option {
	return func(r *GraphApproxRouter) { r.padding = p }
}

// WithHooks sets the sweep hooks. The default is the globally registered
// [observability.Router] hooks.
func WithHooks(h observability.RouterHooks) Option {
	return func(r *GraphApproxRouter) {
		if h != nil {
			r.hooks = h
		}
	}
}

// New creates a router over store. layerFactors and layerDirections are
// indexed by layer and must cover every layer of the store.
func New(store Store, layerFactors []int64, layerDirections []design.Direction, opts ...Option) *GraphApproxRouter {
	r := &GraphApproxRouter{
		store:           store,
		layerFactors:    layerFactors,
		layerDirections: layerDirections,
		solver:          steiner.ShortestPathHeuristic{},
		logger:          log.New(io.Discard),
		hooks:           observability.Router(),
		padding:         DefaultPadding(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.rgm = NewRoutingGraphManager(store, r.padding)
	return r
}

// Manager returns the graph manager holding the state of the last routed net.
func (r *GraphApproxRouter) Manager() *RoutingGraphManager { return r.rgm }

// SingleNetRoute computes a fresh route for net. originRoute is the net's
// previous route and only widens the bounding box.
//
// The returned segments are stubs followed by one unit segment per tree edge;
// callers merge them with [route.Reduce]. It returns (nil, false) when the
// solver cannot connect the terminals, and (nil, true) for a net without
// pins.
func (r *GraphApproxRouter) SingleNetRoute(net *design.Net, originRoute []route.Segment) ([]route.Segment, bool) {
	if len(net.Pins) == 0 {
		return nil, true
	}

	r.rgm.SetGraphInfo(net, originRoute)
	stubs := r.rgm.CreateTerminalsAndRouteUnderMinLayer()
	r.rgm.CreateGraph(r.layerFactors, r.layerDirections)

	edges, err := r.solver.Solve(r.rgm.Graph(), r.rgm.Terminals())
	if err != nil {
		r.logger.Debug("net unroutable", "net", net.Name, "terminals", len(r.rgm.Terminals()), "err", err)
		return nil, false
	}
	return r.rgm.CreateFinalRoute(edges, stubs), true
}
