package router

import (
	"fmt"
	"testing"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/grid"
)

// fixture builds small designs: every pin gets its own single-pin instance.
type fixture struct {
	f     design.File
	insts int
}

type pinAt struct {
	row, col int
	layer    string
}

func newFixture(rows, cols int, layers ...design.LayerJSON) *fixture {
	fx := &fixture{f: design.File{
		Grid:   design.GridJSON{RowBegin: 0, RowEnd: rows - 1, ColBegin: 0, ColEnd: cols - 1},
		Layers: layers,
	}}
	for _, l := range layers {
		fx.f.Masters = append(fx.f.Masters, design.MasterJSON{
			Name: "CELL_" + l.Name,
			Pins: []design.MasterPinJSON{{Name: "A", Layer: l.Name}},
		})
	}
	return fx
}

func (fx *fixture) net(name, minLayer string, pins ...pinAt) *fixture {
	nj := design.NetJSON{Name: name, MinLayer: minLayer}
	for _, p := range pins {
		fx.insts++
		inst := fmt.Sprintf("u%d", fx.insts)
		fx.f.Instances = append(fx.f.Instances, design.InstanceJSON{Name: inst, Master: "CELL_" + p.layer, Row: p.row, Col: p.col})
		nj.Pins = append(nj.Pins, design.PinJSON{Inst: inst, Pin: "A"})
	}
	fx.f.Nets = append(fx.f.Nets, nj)
	return fx
}

func (fx *fixture) route(net string, from, to [3]int) *fixture {
	fx.f.Routes = append(fx.f.Routes, design.RouteJSON{Net: net, From: from, To: to})
	return fx
}

func (fx *fixture) adjust(row, col, layer, delta int) *fixture {
	fx.f.Adjustments = append(fx.f.Adjustments, design.AdjustmentJSON{Row: row, Col: col, Layer: layer, Delta: delta})
	return fx
}

func (fx *fixture) build(t *testing.T) (*design.Design, *grid.Manager) {
	t.Helper()
	d, err := design.Resolve(fx.f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return d, grid.New(d)
}

func twoLayers() []design.LayerJSON {
	return []design.LayerJSON{
		{Name: "M1", Direction: design.Horizontal, Factor: 1, Supply: 10},
		{Name: "M2", Direction: design.Vertical, Factor: 1, Supply: 10},
	}
}

func threeLayers() []design.LayerJSON {
	return append(twoLayers(), design.LayerJSON{Name: "M3", Direction: design.Horizontal, Factor: 1, Supply: 10})
}

func newRouter(d *design.Design, store *grid.Manager, opts ...Option) *GraphApproxRouter {
	return New(store, d.LayerFactors(), d.LayerDirections(), opts...)
}

func mustNet(t *testing.T, d *design.Design, name string) *design.Net {
	t.Helper()
	n, ok := d.Net(name)
	if !ok {
		t.Fatalf("net %s not found", name)
	}
	return n
}
