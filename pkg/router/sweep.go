package router

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/route"
)

// SweepStats summarizes one [GraphApproxRouter.RerouteAll] run.
type SweepStats struct {
	RunID      string        `json:"run_id"`
	Nets       int           `json:"nets"`     // nets visited
	Improved   int           `json:"improved"` // nets whose route was replaced
	Failed     int           `json:"failed"`   // nets the solver could not route
	CostBefore int64         `json:"cost_before"`
	CostAfter  int64         `json:"cost_after"`
	Duration   time.Duration `json:"duration"`
}

// Summary converts the stats to the observability form.
func (s SweepStats) Summary() observability.SweepSummary {
	return observability.SweepSummary{
		Nets:       s.Nets,
		Improved:   s.Improved,
		Failed:     s.Failed,
		CostBefore: s.CostBefore,
		CostAfter:  s.CostAfter,
		Duration:   s.Duration,
	}
}

type netCost struct {
	net  *design.Net
	cost int64
}

// RerouteAll runs one greedy rip-up and reroute sweep over every net in the
// store.
//
// Nets are visited by descending stored cost, ties broken by name. Each net is
// removed from the grid, rerouted, and its new route kept only if its cost is
// strictly lower than the stored one. The net is added back in either case.
// A net that cannot be routed keeps its route and counts as failed.
//
// ctx is checked between nets. On cancellation the store is consistent and
// the partial stats are returned with ctx.Err().
func (r *GraphApproxRouter) RerouteAll(ctx context.Context) (SweepStats, error) {
	start := time.Now()
	routes := r.store.NetRoutes()

	order := make([]netCost, 0, len(routes))
	var before int64
	for net, nr := range routes {
		order = append(order, netCost{net, nr.Cost})
		before += nr.Cost
	}
	slices.SortFunc(order, func(a, b netCost) int {
		return cmp.Or(cmp.Compare(b.cost, a.cost), cmp.Compare(a.net.Name, b.net.Name))
	})

	stats := SweepStats{RunID: uuid.NewString(), CostBefore: before, CostAfter: before}
	r.logger.Info("starting reroute sweep", "run", stats.RunID, "nets", len(order), "cost", before)
	r.hooks.OnSweepStart(ctx, stats.RunID, len(order))

	var err error
	for _, nc := range order {
		if err = ctx.Err(); err != nil {
			break
		}
		stats.Nets++
		gain, routed := r.rerouteNet(ctx, nc.net)
		if !routed {
			stats.Failed++
		}
		if gain > 0 {
			stats.Improved++
			stats.CostAfter -= gain
		}
	}

	stats.Duration = time.Since(start)
	r.hooks.OnSweepComplete(ctx, stats.RunID, stats.Summary(), err)
	if err != nil {
		r.logger.Warn("reroute sweep cancelled", "run", stats.RunID, "visited", stats.Nets, "err", err)
		return stats, err
	}
	r.logger.Info("finished reroute sweep",
		"run", stats.RunID,
		"improved", stats.Improved,
		"failed", stats.Failed,
		"cost", stats.CostAfter,
		"duration", stats.Duration)
	return stats, nil
}

// NetStats reports one [GraphApproxRouter.RerouteNet] call.
type NetStats struct {
	Net        string `json:"net"`
	CostBefore int64  `json:"cost_before"`
	CostAfter  int64  `json:"cost_after"`
	Routed     bool   `json:"routed"`
}

// RerouteNet rips up and reroutes a single net with the same acceptance rule
// as [GraphApproxRouter.RerouteAll]. A net the store does not hold is left
// alone and reported as not routed.
func (r *GraphApproxRouter) RerouteNet(ctx context.Context, net *design.Net) NetStats {
	nr, ok := r.store.NetRoutes()[net]
	if !ok {
		r.logger.Warn("net not held by store", "net", net.Name)
		return NetStats{Net: net.Name}
	}
	before := nr.Cost
	gain, routed := r.rerouteNet(ctx, net)
	return NetStats{Net: net.Name, CostBefore: before, CostAfter: before - gain, Routed: routed}
}

// rerouteNet removes net, tries a new route and adds the net back. It returns
// the cost reduction (zero if the stored route was kept) and whether the
// solver found a route.
func (r *GraphApproxRouter) rerouteNet(ctx context.Context, net *design.Net) (int64, bool) {
	nr := r.store.NetRoutes()[net]
	r.store.RemoveNet(net)
	defer r.store.AddNet(net)

	origin := nr.Cost
	segs, ok := r.SingleNetRoute(net, nr.Segments)
	if !ok {
		r.hooks.OnNetRerouted(ctx, net.Name, origin, origin, false)
		return 0, false
	}
	segs = route.Reduce(segs)
	cost := r.store.RouteCost(net, segs)
	if origin == 0 && cost > 0 {
		r.logger.Warn("net has no initial route, leaving it unrouted", "net", net.Name, "candidate", cost)
	}
	var gain int64
	if cost < origin {
		nr.Segments, nr.Cost = segs, cost
		gain = origin - cost
	}
	r.logger.Debug("rerouted net", "net", net.Name, "before", origin, "candidate", cost, "accepted", gain > 0)
	r.hooks.OnNetRerouted(ctx, net.Name, origin, nr.Cost, true)
	return gain, true
}
