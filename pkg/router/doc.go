// Package router implements graph-based detailed routing of nets on a
// multi-layer gcell grid.
//
// # Overview
//
// Routing one net runs a short pipeline owned by a [RoutingGraphManager]:
//
//  1. Derive a bounding box from the net's pins and its previous route,
//     padded and clamped to the grid and to the net's minimum routing layer.
//  2. Map every gcell of the box to a dense vertex index with a codec.
//  3. Collect terminals. Pins below the box floor are lifted to the floor and
//     connected by stub segments.
//  4. Build a weighted graph of wire edges (along each layer's preferred
//     direction) and via edges between cells that still have supply.
//  5. Solve a Steiner tree over the terminals and decode its edges back into
//     route segments.
//
// [GraphApproxRouter] drives that pipeline for single nets and runs the greedy
// rip-up and reroute sweep over a whole design.
//
// # Sweep
//
// [GraphApproxRouter.RerouteAll] visits every net once, most expensive first.
// Each net is removed from the grid, rerouted against the supply the other
// nets leave, and kept only if the new route is strictly cheaper. The net is
// always added back before the next one is visited, so the grid's demand stays
// consistent whether the new route is accepted or not.
//
// # Regions
//
// A [RegionCalculator] reports the row and column window a net is routed in.
// [PinBoxRegion] uses the same padding rules as the graph manager;
// [GridRegion] returns the whole grid.
package router
