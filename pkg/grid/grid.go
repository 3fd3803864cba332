// Package grid implements the in-memory routing grid store.
//
// The store owns the routing supply of every gcell and the current route and
// cost of every net. A net placed on the grid consumes one unit of supply on
// every distinct gcell covered by its route or holding one of its pins.
//
// The store is not safe for concurrent use.
package grid

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/cellroute/pkg/codec"
	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/route"
)

// Cell is the capacity bookkeeping of one gcell.
type Cell struct {
	Capacity int
	Demand   int
}

// Supply returns the remaining capacity. It is negative on overflow.
func (c *Cell) Supply() int { return c.Capacity - c.Demand }

// NetRoute is a net's current route and its cost.
type NetRoute struct {
	Segments []route.Segment
	Cost     int64
}

// Manager is the grid store of one design.
type Manager struct {
	design  *design.Design
	codec   codec.Codec
	cells   []Cell
	factors []int64

	routes map[*design.Net]*NetRoute
	placed map[*design.Net][]uint64 // net -> cells its demand was charged to
}

// Option configures a Manager.
type Option func(*Manager)

// WithFactors overrides the design's layer factors used by [Manager.RouteCost].
// The router must be given the same factors so that graph weights and stored
// costs agree. It panics if len(factors) differs from the layer count.
func WithFactors(factors []int64) Option {
	return func(m *Manager) {
		if len(factors) != m.design.LayerCount() {
			panic(fmt.Sprintf("grid: %d layer factors for %d layers", len(factors), m.design.LayerCount()))
		}
		m.factors = slices.Clone(factors)
	}
}

// New builds a grid store for d. Every net is placed with its initial route
// (reduced) from the design; nets without routes are placed with their pins
// only.
func New(d *design.Design, opts ...Option) *Manager {
	m := &Manager{
		design:  d,
		codec:   codec.New(uint64(d.Rows()), uint64(d.Cols()), uint64(d.LayerCount())),
		factors: d.LayerFactors(),
		routes:  make(map[*design.Net]*NetRoute, len(d.Nets)),
		placed:  make(map[*design.Net][]uint64, len(d.Nets)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cells = make([]Cell, m.codec.Max())
	for r := d.RowBegin; r <= d.RowEnd; r++ {
		for c := d.ColBegin; c <= d.ColEnd; c++ {
			for _, l := range d.Layers {
				m.Grid(r, c, l.Idx).Capacity = l.Supply
			}
		}
	}
	for _, a := range d.Adjustments {
		m.Grid(a.Row, a.Col, a.Layer).Capacity += a.Delta
	}

	byNet := make(map[string][]design.Route)
	for _, r := range d.Routes {
		byNet[r.Net] = append(byNet[r.Net], r)
	}
	for _, n := range d.Nets {
		segs := route.Reduce(route.FromDesign(n, byNet[n.Name]))
		m.routes[n] = &NetRoute{Segments: segs, Cost: m.RouteCost(n, segs)}
		m.AddNet(n)
	}
	return m
}

// =============================================================================
// Extents
// =============================================================================

// Design returns the design the store was built from.
func (m *Manager) Design() *design.Design { return m.design }

// RowBegin returns the first row.
func (m *Manager) RowBegin() int { return m.design.RowBegin }

// RowEnd returns the last row (inclusive).
func (m *Manager) RowEnd() int { return m.design.RowEnd }

// ColBegin returns the first column.
func (m *Manager) ColBegin() int { return m.design.ColBegin }

// ColEnd returns the last column (inclusive).
func (m *Manager) ColEnd() int { return m.design.ColEnd }

// LayerCount returns the number of layers.
func (m *Manager) LayerCount() int { return m.design.LayerCount() }

// Contains reports whether (row, col, layer) is a gcell of the grid.
func (m *Manager) Contains(row, col, layer int) bool {
	return row >= m.RowBegin() && row <= m.RowEnd() &&
		col >= m.ColBegin() && col <= m.ColEnd() &&
		layer >= 0 && layer < m.LayerCount()
}

// =============================================================================
// Cells
// =============================================================================

// Grid returns the gcell at (row, col, layer). It panics outside the grid.
func (m *Manager) Grid(row, col, layer int) *Cell {
	return &m.cells[m.index(row, col, layer)]
}

// Supply returns the remaining supply of a gcell.
func (m *Manager) Supply(row, col, layer int) int {
	return m.Grid(row, col, layer).Supply()
}

// CellCoordinate returns the gcell an instance is placed on.
func (m *Manager) CellCoordinate(inst *design.Instance) (row, col int) {
	return inst.Row, inst.Col
}

// Overflow sums demand in excess of capacity over all gcells.
func (m *Manager) Overflow() int {
	total := 0
	for i := range m.cells {
		if s := m.cells[i].Supply(); s < 0 {
			total -= s
		}
	}
	return total
}

func (m *Manager) index(row, col, layer int) uint64 {
	if !m.Contains(row, col, layer) {
		panic(fmt.Sprintf("grid: gcell (%d,%d,%d) outside grid", row, col, layer))
	}
	return m.codec.Encode3(uint64(row-m.RowBegin()), uint64(col-m.ColBegin()), uint64(layer))
}

// =============================================================================
// Nets
// =============================================================================

// NetRoutes returns the net -> route map. Callers may replace a net's route
// while the net is removed from the grid.
func (m *Manager) NetRoutes() map[*design.Net]*NetRoute { return m.routes }

// Nets returns all routed nets sorted by name.
func (m *Manager) Nets() []*design.Net {
	nets := slices.Collect(maps.Keys(m.routes))
	slices.SortFunc(nets, func(a, b *design.Net) int { return cmp.Compare(a.Name, b.Name) })
	return nets
}

// RemoveNet releases the supply consumed by a placed net. Removing a net that
// is not placed does nothing.
func (m *Manager) RemoveNet(net *design.Net) {
	cells, ok := m.placed[net]
	if !ok {
		return
	}
	for _, i := range cells {
		m.cells[i].Demand--
	}
	delete(m.placed, net)
}

// AddNet charges the supply for a net's current route and pins. Adding a net
// that is already placed does nothing. A net without a stored route is
// registered with an empty one.
func (m *Manager) AddNet(net *design.Net) {
	if _, ok := m.placed[net]; ok {
		return
	}
	nr, ok := m.routes[net]
	if !ok {
		nr = &NetRoute{}
		m.routes[net] = nr
	}
	seen := make(map[uint64]struct{})
	for _, p := range net.Pins {
		r, c := m.CellCoordinate(p.Inst)
		seen[m.index(r, c, p.Layer())] = struct{}{}
	}
	for _, s := range nr.Segments {
		s.Cells(func(p route.Point) {
			seen[m.index(p.Row, p.Col, p.Layer)] = struct{}{}
		})
	}
	cells := slices.Sorted(maps.Keys(seen))
	for _, i := range cells {
		m.cells[i].Demand++
	}
	m.placed[net] = cells
}

// IsPlaced reports whether a net currently consumes supply.
func (m *Manager) IsPlaced(net *design.Net) bool {
	_, ok := m.placed[net]
	return ok
}

// RouteCost returns the cost of segs: the sum over distinct unit steps of
// 2*factor for a wire step on a layer and factor[l]+factor[l+1] for a via step
// between layers l and l+1.
func (m *Manager) RouteCost(net *design.Net, segs []route.Segment) int64 {
	seen := make(map[[2]route.Point]struct{})
	var cost int64
	for _, s := range segs {
		s.Steps(func(lo, hi route.Point) {
			k := [2]route.Point{lo, hi}
			if _, dup := seen[k]; dup {
				return
			}
			seen[k] = struct{}{}
			if lo.Layer == hi.Layer {
				cost += 2 * m.factors[lo.Layer]
			} else {
				cost += m.factors[lo.Layer] + m.factors[hi.Layer]
			}
		})
	}
	return cost
}

// Factors returns the layer factors costs are computed with.
func (m *Manager) Factors() []int64 { return slices.Clone(m.factors) }

// TotalCost sums the stored cost of every net.
func (m *Manager) TotalCost() int64 {
	var total int64
	for _, nr := range m.routes {
		total += nr.Cost
	}
	return total
}

// WriteBack stores every net's current route in the design.
func (m *Manager) WriteBack() {
	var routes []design.Route
	for _, n := range m.Nets() {
		routes = append(routes, route.ToDesign(n.Name, m.routes[n].Segments)...)
	}
	m.design.Routes = routes
}
