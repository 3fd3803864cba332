package router

import (
	"maps"
	"slices"

	"github.com/matzehuels/cellroute/pkg/codec"
	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/graph"
	"github.com/matzehuels/cellroute/pkg/route"
)

// Default bounding box padding.
const (
	DefaultRowColPadding = 5
	DefaultLayerPadding  = 1
)

// Padding extends a net's bounding box before it is clamped to the grid.
type Padding struct {
	RowCol int // rows and columns added on every side
	Layer  int // layers added below and above
}

// DefaultPadding returns the padding used when none is configured.
func DefaultPadding() Padding {
	return Padding{RowCol: DefaultRowColPadding, Layer: DefaultLayerPadding}
}

// Box is an inclusive window of the grid.
type Box struct {
	MinR, MaxR         int
	MinC, MaxC         int
	MinLayer, MaxLayer int
}

// Contains reports whether the gcell lies inside the box.
func (b Box) Contains(row, col, layer int) bool {
	return row >= b.MinR && row <= b.MaxR &&
		col >= b.MinC && col <= b.MaxC &&
		layer >= b.MinLayer && layer <= b.MaxLayer
}

// RoutingGraphManager owns the per-net routing state: bounding box, codec,
// graph, terminals and the pins that sit below the box floor.
//
// A manager is rebuilt from scratch by every [RoutingGraphManager.SetGraphInfo]
// call. The graph's storage is reused between calls.
type RoutingGraphManager struct {
	store   Store
	padding Padding

	net       *design.Net
	box       Box
	codec     codec.Codec
	graph     graph.Graph
	terminals []int

	pinMinLayer map[uint64]int // coded (row, col, floor) -> lowest pin layer below the floor
}

// NewRoutingGraphManager creates a manager reading supply from store.
func NewRoutingGraphManager(store Store, padding Padding) *RoutingGraphManager {
	return &RoutingGraphManager{store: store, padding: padding}
}

// Box returns the current bounding box.
func (m *RoutingGraphManager) Box() Box { return m.box }

// Codec returns the codec of the current box.
func (m *RoutingGraphManager) Codec() codec.Codec { return m.codec }

// Graph returns the routing graph built by [RoutingGraphManager.CreateGraph].
func (m *RoutingGraphManager) Graph() *graph.Graph { return &m.graph }

// Terminals returns the coded terminal vertices in ascending order.
func (m *RoutingGraphManager) Terminals() []int { return m.terminals }

// SetGraphInfo computes the bounding box of net from its pins and the
// endpoints of originRoute, pads and clamps it, and sizes the codec.
//
// The row and column range is clamped to the grid; the layer range to
// [net.MinLayer(), top layer]. A net with neither pins nor route gets the
// single unpadded cell at the grid origin on the floor layer.
func (m *RoutingGraphManager) SetGraphInfo(net *design.Net, originRoute []route.Segment) {
	m.net = net

	rowBegin, rowEnd := m.store.RowBegin(), m.store.RowEnd()
	colBegin, colEnd := m.store.ColBegin(), m.store.ColEnd()
	top := m.store.LayerCount() - 1
	floor := net.MinLayer()

	if len(net.Pins) == 0 && len(originRoute) == 0 {
		m.box = Box{
			MinR: rowBegin, MaxR: rowBegin,
			MinC: colBegin, MaxC: colBegin,
			MinLayer: floor, MaxLayer: floor,
		}
		m.codec = codec.New(1, 1, 1)
		return
	}

	// Start inverted so the first pin or route endpoint sets the range.
	b := Box{
		MinR: rowEnd, MaxR: rowBegin,
		MinC: colEnd, MaxC: colBegin,
		MinLayer: top + 1, MaxLayer: floor,
	}
	extend := func(row, col, layer int) {
		b.MinR, b.MaxR = min(b.MinR, row), max(b.MaxR, row)
		b.MinC, b.MaxC = min(b.MinC, col), max(b.MaxC, col)
		b.MinLayer, b.MaxLayer = min(b.MinLayer, layer), max(b.MaxLayer, layer)
	}
	for _, p := range net.Pins {
		row, col := m.store.CellCoordinate(p.Inst)
		extend(row, col, p.Layer())
	}
	for _, s := range originRoute {
		extend(s.SRow, s.SCol, s.SLayer)
		extend(s.ERow, s.ECol, s.ELayer)
	}

	pad := m.padding
	b.MinR = max(b.MinR-pad.RowCol, rowBegin)
	b.MaxR = min(b.MaxR+pad.RowCol, rowEnd)
	b.MinC = max(b.MinC-pad.RowCol, colBegin)
	b.MaxC = min(b.MaxC+pad.RowCol, colEnd)
	b.MinLayer = max(b.MinLayer-pad.Layer, floor)
	b.MaxLayer = min(b.MaxLayer+pad.Layer, top)
	m.box = b

	m.codec = codec.New(
		uint64(b.MaxR-b.MinR+1),
		uint64(b.MaxC-b.MinC+1),
		uint64(b.MaxLayer-b.MinLayer+1),
	)
}

// CreateTerminalsAndRouteUnderMinLayer collects the terminal vertices of the
// net and returns the stub segments that lift pins below the box floor to it.
//
// A pin on layer l becomes a terminal at max(l, floor). For every (row, col)
// with pins below the floor one stub runs from the lowest such pin layer up to
// the floor. Stubs are returned in ascending coded order.
func (m *RoutingGraphManager) CreateTerminalsAndRouteUnderMinLayer() []route.Segment {
	b := m.box
	m.pinMinLayer = make(map[uint64]int)
	terminals := make(map[int]struct{}, len(m.net.Pins))

	for _, p := range m.net.Pins {
		row, col := m.store.CellCoordinate(p.Inst)
		layer := p.Layer()
		terminals[int(m.encode(row, col, max(layer, b.MinLayer)))] = struct{}{}
		if layer < b.MinLayer {
			k := m.encode(row, col, b.MinLayer)
			if cur, ok := m.pinMinLayer[k]; !ok || layer < cur {
				m.pinMinLayer[k] = layer
			}
		}
	}
	m.terminals = slices.Sorted(maps.Keys(terminals))

	stubs := make([]route.Segment, 0, len(m.pinMinLayer))
	for _, k := range slices.Sorted(maps.Keys(m.pinMinLayer)) {
		row, col, _ := m.decode(k)
		stubs = append(stubs, route.Segment{
			SRow: row, SCol: col, SLayer: m.pinMinLayer[k],
			ERow: row, ECol: col, ELayer: b.MinLayer,
			Net: m.net,
		})
	}
	return stubs
}

// CreateGraph rebuilds the routing graph over the box.
//
// Wire edges join neighbouring cells along each layer's direction (columns on
// horizontal layers, rows on vertical ones) with weight 2*factor[l]. Via edges
// join vertically stacked cells on layers l and l+1 with weight
// factor[l]+factor[l+1]. Both endpoints of every edge must have positive
// supply.
func (m *RoutingGraphManager) CreateGraph(layerFactors []int64, layerDirections []design.Direction) {
	b := m.box
	m.graph.Clear()
	m.graph.SetVertexNum(int(m.codec.Max()))

	usable := func(row, col, layer int) bool { return m.store.Supply(row, col, layer) > 0 }

	// wire
	for l := b.MinLayer; l <= b.MaxLayer; l++ {
		weight := 2 * layerFactors[l]
		dir := layerDirections[l]
		for r := b.MinR; r <= b.MaxR; r++ {
			for c := b.MinC; c <= b.MaxC; c++ {
				if !usable(r, c, l) {
					continue
				}
				v := int(m.encode(r, c, l))
				if dir == design.Horizontal && c != b.MaxC && usable(r, c+1, l) {
					m.graph.AddEdge(v, int(m.encode(r, c+1, l)), weight)
				}
				if dir == design.Vertical && r != b.MaxR && usable(r+1, c, l) {
					m.graph.AddEdge(v, int(m.encode(r+1, c, l)), weight)
				}
			}
		}
	}

	// via
	for l := b.MinLayer; l < b.MaxLayer; l++ {
		weight := layerFactors[l] + layerFactors[l+1]
		for r := b.MinR; r <= b.MaxR; r++ {
			for c := b.MinC; c <= b.MaxC; c++ {
				if !usable(r, c, l) || !usable(r, c, l+1) {
					continue
				}
				m.graph.AddEdge(int(m.encode(r, c, l)), int(m.encode(r, c, l+1)), weight)
			}
		}
	}
}

// CreateFinalRoute returns stubs followed by one segment per solved edge,
// shifted back to grid coordinates. Segments are not merged.
func (m *RoutingGraphManager) CreateFinalRoute(edges []int, stubs []route.Segment) []route.Segment {
	out := make([]route.Segment, 0, len(stubs)+len(edges))
	out = append(out, stubs...)
	for _, id := range edges {
		e := m.graph.Edge(id)
		r1, c1, l1 := m.decode(uint64(e.V1))
		r2, c2, l2 := m.decode(uint64(e.V2))
		out = append(out, route.Segment{
			SRow: r1, SCol: c1, SLayer: l1,
			ERow: r2, ECol: c2, ELayer: l2,
			Net: m.net,
		})
	}
	return out
}

func (m *RoutingGraphManager) encode(row, col, layer int) uint64 {
	b := m.box
	return m.codec.Encode3(uint64(row-b.MinR), uint64(col-b.MinC), uint64(layer-b.MinLayer))
}

func (m *RoutingGraphManager) decode(v uint64) (row, col, layer int) {
	r, c, l := m.codec.Decode3(v)
	b := m.box
	return int(r) + b.MinR, int(c) + b.MinC, int(l) + b.MinLayer
}
