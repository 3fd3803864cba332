package router

import (
	"testing"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/route"
)

func TestSetGraphInfoBox(t *testing.T) {
	tests := []struct {
		name   string
		min    string
		routed bool
		want   Box
	}{
		{"pins only", "", false, Box{MinR: 5, MaxR: 17, MinC: 5, MaxC: 16, MinLayer: 0, MaxLayer: 1}},
		{"with prior route", "", true, Box{MinR: 0, MaxR: 17, MinC: 0, MaxC: 19, MinLayer: 0, MaxLayer: 2}},
		{"min layer floor", "M2", false, Box{MinR: 5, MaxR: 17, MinC: 5, MaxC: 16, MinLayer: 1, MaxLayer: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store := newFixture(20, 20, threeLayers()...).
				net("n", tt.min, pinAt{10, 10, "M1"}, pinAt{12, 11, "M1"}).
				build(t)
			net := mustNet(t, d, "n")

			var origin []route.Segment
			if tt.routed {
				origin = []route.Segment{{SRow: 3, SCol: 18, SLayer: 1, ERow: 3, ECol: 3, ELayer: 1, Net: net}}
			}
			m := NewRoutingGraphManager(store, DefaultPadding())
			m.SetGraphInfo(net, origin)

			if got := m.Box(); got != tt.want {
				t.Errorf("Box = %+v, want %+v", got, tt.want)
			}
			b := m.Box()
			wantMax := uint64((b.MaxR - b.MinR + 1) * (b.MaxC - b.MinC + 1) * (b.MaxLayer - b.MinLayer + 1))
			if m.Codec().Max() != wantMax {
				t.Errorf("Codec.Max = %d, want %d", m.Codec().Max(), wantMax)
			}
		})
	}
}

func TestSetGraphInfoEmptyNet(t *testing.T) {
	d, store := newFixture(20, 20, threeLayers()...).net("n", "M2").build(t)
	m := NewRoutingGraphManager(store, DefaultPadding())
	m.SetGraphInfo(mustNet(t, d, "n"), nil)

	if got, want := m.Box(), (Box{MinLayer: 1, MaxLayer: 1}); got != want {
		t.Errorf("Box = %+v, want %+v", got, want)
	}
	if got := m.Codec().Max(); got != 1 {
		t.Errorf("Codec.Max = %d, want 1", got)
	}
	if stubs := m.CreateTerminalsAndRouteUnderMinLayer(); len(stubs) != 0 || len(m.Terminals()) != 0 {
		t.Errorf("stubs = %v, terminals = %v, want none", stubs, m.Terminals())
	}
	m.CreateGraph(d.LayerFactors(), d.LayerDirections())
	if got := m.Graph().EdgeCount(); got != 0 {
		t.Errorf("EdgeCount = %d, want 0", got)
	}
}

func TestBoxContainsPinsAndClamps(t *testing.T) {
	d, store := newFixture(6, 6, threeLayers()...).
		net("n", "M3", pinAt{0, 0, "M1"}, pinAt{5, 5, "M2"}).
		build(t)
	net := mustNet(t, d, "n")
	m := NewRoutingGraphManager(store, Padding{RowCol: 10, Layer: 3})
	m.SetGraphInfo(net, nil)

	b := m.Box()
	if b != (Box{MinR: 0, MaxR: 5, MinC: 0, MaxC: 5, MinLayer: 2, MaxLayer: 2}) {
		t.Errorf("Box = %+v", b)
	}
	for _, p := range net.Pins {
		if !b.Contains(p.Inst.Row, p.Inst.Col, max(p.Layer(), b.MinLayer)) {
			t.Errorf("box %+v does not contain pin at (%d,%d)", b, p.Inst.Row, p.Inst.Col)
		}
	}
}

func TestTerminalsCoverPins(t *testing.T) {
	d, store := newFixture(10, 10, threeLayers()...).
		net("n", "M2",
			pinAt{2, 2, "M1"}, pinAt{2, 2, "M1"}, pinAt{7, 3, "M3"}, pinAt{4, 8, "M2"}).
		build(t)
	net := mustNet(t, d, "n")
	m := NewRoutingGraphManager(store, DefaultPadding())
	m.SetGraphInfo(net, nil)
	m.CreateTerminalsAndRouteUnderMinLayer()

	b := m.Box()
	terms := make(map[int]bool)
	for _, v := range m.Terminals() {
		terms[v] = true
	}
	if len(terms) != 3 {
		t.Errorf("len(Terminals) = %d, want 3 (duplicate pins collapse)", len(terms))
	}
	for _, p := range net.Pins {
		v := int(m.encode(p.Inst.Row, p.Inst.Col, max(p.Layer(), b.MinLayer)))
		if !terms[v] {
			t.Errorf("pin at (%d,%d,%d) has no terminal", p.Inst.Row, p.Inst.Col, p.Layer())
		}
	}
}

func TestStubsBelowMinLayer(t *testing.T) {
	d, store := newFixture(10, 10, threeLayers()...).
		net("n", "M3", pinAt{3, 4, "M2"}, pinAt{3, 4, "M1"}, pinAt{6, 1, "M1"}, pinAt{3, 8, "M3"}).
		build(t)
	net := mustNet(t, d, "n")
	m := NewRoutingGraphManager(store, DefaultPadding())
	m.SetGraphInfo(net, nil)
	stubs := m.CreateTerminalsAndRouteUnderMinLayer()

	want := []route.Segment{
		{SRow: 3, SCol: 4, SLayer: 0, ERow: 3, ECol: 4, ELayer: 2, Net: net},
		{SRow: 6, SCol: 1, SLayer: 0, ERow: 6, ECol: 1, ELayer: 2, Net: net},
	}
	if len(stubs) != len(want) {
		t.Fatalf("stubs = %v, want %v", stubs, want)
	}
	for i := range want {
		if stubs[i] != want[i] {
			t.Errorf("stubs[%d] = %v, want %v", i, stubs[i], want[i])
		}
	}
}

func TestCreateGraphEdgeLegality(t *testing.T) {
	d, store := newFixture(8, 8, threeLayers()...).
		adjust(2, 3, 0, -10).
		adjust(4, 4, 1, -10).
		adjust(5, 5, 2, -10).
		net("n", "", pinAt{1, 1, "M1"}, pinAt{6, 6, "M1"}).
		build(t)
	net := mustNet(t, d, "n")
	m := NewRoutingGraphManager(store, DefaultPadding())
	m.SetGraphInfo(net, nil)
	m.CreateTerminalsAndRouteUnderMinLayer()
	m.CreateGraph(d.LayerFactors(), d.LayerDirections())

	g := m.Graph()
	if g.VertexCount() != int(m.Codec().Max()) {
		t.Fatalf("VertexCount = %d, want %d", g.VertexCount(), m.Codec().Max())
	}
	if g.EdgeCount() == 0 {
		t.Fatal("graph has no edges")
	}
	dirs := d.LayerDirections()
	for i, e := range g.Edges() {
		r1, c1, l1 := m.decode(uint64(e.V1))
		r2, c2, l2 := m.decode(uint64(e.V2))
		if store.Supply(r1, c1, l1) <= 0 || store.Supply(r2, c2, l2) <= 0 {
			t.Errorf("edge %d touches a cell without supply", i)
		}
		switch {
		case l1 != l2:
			if r1 != r2 || c1 != c2 || abs(l1-l2) != 1 {
				t.Errorf("edge %d is not a via between adjacent layers", i)
			}
			if e.Weight != 2 {
				t.Errorf("via weight = %d, want 2", e.Weight)
			}
		case dirs[l1] == design.Horizontal:
			if r1 != r2 || abs(c1-c2) != 1 {
				t.Errorf("edge %d on horizontal layer %d is not a column step", i, l1)
			}
		default:
			if c1 != c2 || abs(r1-r2) != 1 {
				t.Errorf("edge %d on vertical layer %d is not a row step", i, l1)
			}
		}
		if l1 == l2 && e.Weight != 2 {
			t.Errorf("wire weight = %d, want 2", e.Weight)
		}
	}
}

func TestCreateGraphIsRebuilt(t *testing.T) {
	d, store := newFixture(8, 8, twoLayers()...).
		net("a", "", pinAt{1, 1, "M1"}, pinAt{1, 6, "M1"}).
		net("b", "", pinAt{5, 2, "M1"}, pinAt{5, 3, "M1"}).
		build(t)
	m := NewRoutingGraphManager(store, Padding{})

	m.SetGraphInfo(mustNet(t, d, "a"), nil)
	m.CreateGraph(d.LayerFactors(), d.LayerDirections())
	first := m.Graph().EdgeCount()

	m.SetGraphInfo(mustNet(t, d, "b"), nil)
	m.CreateGraph(d.LayerFactors(), d.LayerDirections())
	if got := m.Graph().EdgeCount(); got != 1 {
		t.Errorf("EdgeCount = %d, want 1 (previous net's %d edges discarded)", got, first)
	}
}

func TestCreateFinalRoute(t *testing.T) {
	d, store := newFixture(10, 10, twoLayers()...).
		net("n", "", pinAt{4, 3, "M1"}, pinAt{4, 4, "M1"}).
		build(t)
	net := mustNet(t, d, "n")
	m := NewRoutingGraphManager(store, DefaultPadding())
	m.SetGraphInfo(net, nil)
	m.CreateGraph(d.LayerFactors(), d.LayerDirections())

	a, b := int(m.encode(4, 3, 0)), int(m.encode(4, 4, 0))
	id := -1
	for _, e := range m.Graph().Adjacent(a) {
		if m.Graph().Other(e, a) == b {
			id = e
		}
	}
	if id < 0 {
		t.Fatal("no edge between the pins")
	}
	stub := route.Segment{SRow: 9, SCol: 9, SLayer: 0, ERow: 9, ECol: 9, ELayer: 1, Net: net}
	got := m.CreateFinalRoute([]int{id, id}, []route.Segment{stub})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (no dedupe)", len(got))
	}
	if got[0] != stub {
		t.Errorf("got[0] = %v, want stub first", got[0])
	}
	if n := got[1].Normalize(); n.Start() != (route.Point{Row: 4, Col: 3, Layer: 0}) || n.End() != (route.Point{Row: 4, Col: 4, Layer: 0}) {
		t.Errorf("got[1] = %v, want (4,3,0)-(4,4,0)", got[1])
	}
	if got[1].Net != net {
		t.Error("segment not tagged with the net")
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
