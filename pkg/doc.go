// Package pkg provides the core libraries for cellroute, a graph-based
// detailed router for placed standard-cell designs.
//
// # Overview
//
// A design places cell instances on a grid of gcells spread over a stack of
// metal layers. Every net connects pins of those instances and owns a set of
// route segments. cellroute rips up one net at a time, builds a routing graph
// over the gcells around its pins, solves a Steiner tree on that graph and
// keeps the new routing only when it is cheaper than the old one.
//
// # Architecture
//
//	design.json
//	     ↓
//	[design] package (parse and resolve the data model)
//	     ↓
//	[grid] package (supply/demand store, net routes)
//	     ↓
//	[router] package (routing graph, rip-up, Steiner solve, write-back)
//	     ↓
//	[render] package (DOT/SVG/PNG/PDF)
//
// # Main Packages
//
// ## Routing
//
//   - [codec]: dense linear indices for (row, col, layer) tuples
//   - [graph]: index-addressed weighted graph
//   - [steiner]: shortest-path heuristic and KMB Steiner tree solvers
//   - [route]: wire/via segments, splitting and deduplication
//   - [design]: design data model and JSON file format
//   - [grid]: in-memory routing store
//   - [router]: routing graph manager, regions and the sweep router
//
// ## Infrastructure
//
//   - [config]: TOML/YAML configuration
//   - [cache]: file, Redis and null result caches
//   - [pipeline]: load → route → render orchestration with caching
//   - [render]: Graphviz rendering of routed designs
//   - [observability]: hooks for metrics and tracing
//   - [errors]: structured error codes
//   - [buildinfo]: version information
//
// # Quick Start
//
//	d, _ := design.ReadFile("design.json")
//	store := grid.New(d)
//	r := router.New(store, d.LayerFactors(), d.LayerDirections())
//	stats, _ := r.RerouteAll(ctx)
//	store.WriteBack()
//	_ = design.WriteFile(d, "design.routed.json")
//
// [codec]: github.com/matzehuels/cellroute/pkg/codec
// [graph]: github.com/matzehuels/cellroute/pkg/graph
// [steiner]: github.com/matzehuels/cellroute/pkg/steiner
// [route]: github.com/matzehuels/cellroute/pkg/route
// [design]: github.com/matzehuels/cellroute/pkg/design
// [grid]: github.com/matzehuels/cellroute/pkg/grid
// [router]: github.com/matzehuels/cellroute/pkg/router
// [config]: github.com/matzehuels/cellroute/pkg/config
// [cache]: github.com/matzehuels/cellroute/pkg/cache
// [pipeline]: github.com/matzehuels/cellroute/pkg/pipeline
// [render]: github.com/matzehuels/cellroute/pkg/render
// [observability]: github.com/matzehuels/cellroute/pkg/observability
// [errors]: github.com/matzehuels/cellroute/pkg/errors
// [buildinfo]: github.com/matzehuels/cellroute/pkg/buildinfo
package pkg
