package router

import "github.com/matzehuels/cellroute/pkg/design"

// Region is an inclusive row and column window.
type Region struct {
	BeginRow int `json:"begin_row"`
	EndRow   int `json:"end_row"`
	BeginCol int `json:"begin_col"`
	EndCol   int `json:"end_col"`
}

// RegionCalculator reports the window a net may be routed in.
type RegionCalculator interface {
	Region(net *design.Net) Region
}

// PinBoxRegion is the bounding box of a net's pins, widened by Margin rows and
// columns and clamped to the grid. A net without pins gets the whole grid.
type PinBoxRegion struct {
	Store  Store
	Margin int
}

// Region implements [RegionCalculator].
func (p PinBoxRegion) Region(net *design.Net) Region {
	s := p.Store
	if len(net.Pins) == 0 {
		return GridRegion{Store: s}.Region(net)
	}
	reg := Region{BeginRow: s.RowEnd(), EndRow: s.RowBegin(), BeginCol: s.ColEnd(), EndCol: s.ColBegin()}
	for _, pin := range net.Pins {
		row, col := s.CellCoordinate(pin.Inst)
		reg.BeginRow, reg.EndRow = min(reg.BeginRow, row), max(reg.EndRow, row)
		reg.BeginCol, reg.EndCol = min(reg.BeginCol, col), max(reg.EndCol, col)
	}
	reg.BeginRow = max(reg.BeginRow-p.Margin, s.RowBegin())
	reg.EndRow = min(reg.EndRow+p.Margin, s.RowEnd())
	reg.BeginCol = max(reg.BeginCol-p.Margin, s.ColBegin())
	reg.EndCol = min(reg.EndCol+p.Margin, s.ColEnd())
	return reg
}

// GridRegion is the whole grid.
type GridRegion struct {
	Store Store
}

// Region implements [RegionCalculator].
func (g GridRegion) Region(*design.Net) Region {
	s := g.Store
	return Region{BeginRow: s.RowBegin(), EndRow: s.RowEnd(), BeginCol: s.ColBegin(), EndCol: s.ColEnd()}
}

// NewRegionCalculator returns the calculator for a strategy name: "pins"
// (pin bounding box with margin) or "grid". Unknown names fall back to "pins".
func NewRegionCalculator(strategy string, store Store, margin int) RegionCalculator {
	if strategy == "grid" {
		return GridRegion{Store: store}
	}
	return PinBoxRegion{Store: store, Margin: margin}
}
