// Package route defines routed wire and via segments and the operations used
// to normalize, merge and walk them.
//
// A [Segment] joins two gcells that differ in at most one coordinate: a wire
// runs along a row or a column on one layer, a via (or a stub) changes only the
// layer. Endpoints are inclusive, so a segment from (3,2,0) to (3,5,0) covers the
// four gcells in columns 2..5 and three unit steps.
package route

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/cellroute/pkg/design"
)

// Axis identifies the coordinate a segment varies along.
type Axis int

const (
	// None is the axis of a zero-length segment.
	None Axis = iota
	// Row segments change the row (vertical wires).
	Row
	// Col segments change the column (horizontal wires).
	Col
	// Layer segments change the layer (vias and stubs).
	Layer
)

func (a Axis) String() string {
	switch a {
	case Row:
		return "row"
	case Col:
		return "col"
	case Layer:
		return "layer"
	}
	return "none"
}

// Point is a gcell.
type Point struct {
	Row, Col, Layer int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d,%d)", p.Row, p.Col, p.Layer) }

// Segment is a straight piece of a net's route.
type Segment struct {
	SRow, SCol, SLayer int
	ERow, ECol, ELayer int
	Net                *design.Net
}

// Start returns the first endpoint.
func (s Segment) Start() Point { return Point{s.SRow, s.SCol, s.SLayer} }

// End returns the second endpoint.
func (s Segment) End() Point { return Point{s.ERow, s.ECol, s.ELayer} }

// Between builds a segment from two endpoints.
func Between(a, b Point, net *design.Net) Segment {
	return Segment{
		SRow: a.Row, SCol: a.Col, SLayer: a.Layer,
		ERow: b.Row, ECol: b.Col, ELayer: b.Layer,
		Net: net,
	}
}

// Axis returns the coordinate the segment varies along. It panics if the
// endpoints differ in more than one coordinate.
func (s Segment) Axis() Axis {
	var axis Axis
	n := 0
	if s.SRow != s.ERow {
		axis, n = Row, n+1
	}
	if s.SCol != s.ECol {
		axis, n = Col, n+1
	}
	if s.SLayer != s.ELayer {
		axis, n = Layer, n+1
	}
	if n > 1 {
		panic(fmt.Sprintf("route: segment %v-%v is not axis-aligned", s.Start(), s.End()))
	}
	return axis
}

// IsVia reports whether the segment only changes layer.
func (s Segment) IsVia() bool { return s.Axis() == Layer }

// Len returns the number of unit steps the segment covers.
func (s Segment) Len() int {
	return abs(s.ERow-s.SRow) + abs(s.ECol-s.SCol) + abs(s.ELayer-s.SLayer)
}

// Normalize orders the endpoints so that the start is not greater than the end.
func (s Segment) Normalize() Segment {
	if s.SRow > s.ERow || s.SCol > s.ECol || s.SLayer > s.ELayer {
		s.SRow, s.ERow = s.ERow, s.SRow
		s.SCol, s.ECol = s.ECol, s.SCol
		s.SLayer, s.ELayer = s.ELayer, s.SLayer
	}
	return s
}

// Cells calls fn for every gcell the segment covers, start to end.
func (s Segment) Cells(fn func(Point)) {
	p, step := s.Start(), s.unit()
	for i := 0; i <= s.Len(); i++ {
		fn(p)
		p = Point{p.Row + step.Row, p.Col + step.Col, p.Layer + step.Layer}
	}
}

// Steps calls fn for every unit step of the segment. The step's lower gcell is
// passed first, so the same step walked in either direction looks identical.
func (s Segment) Steps(fn func(lo, hi Point)) {
	n := s.Normalize()
	p, step := n.Start(), n.unit()
	for i := 0; i < n.Len(); i++ {
		q := Point{p.Row + step.Row, p.Col + step.Col, p.Layer + step.Layer}
		fn(p, q)
		p = q
	}
}

func (s Segment) unit() Point {
	return Point{sign(s.ERow - s.SRow), sign(s.ECol - s.SCol), sign(s.ELayer - s.SLayer)}
}

// String renders the segment as "(r,c,l)-(r,c,l)".
func (s Segment) String() string {
	return s.Start().String() + "-" + s.End().String()
}

// Compare orders segments by net name, then start, then end.
func Compare(a, b Segment) int {
	return cmp.Or(
		cmp.Compare(netName(a.Net), netName(b.Net)),
		cmp.Compare(a.SLayer, b.SLayer),
		cmp.Compare(a.SRow, b.SRow),
		cmp.Compare(a.SCol, b.SCol),
		cmp.Compare(a.ELayer, b.ELayer),
		cmp.Compare(a.ERow, b.ERow),
		cmp.Compare(a.ECol, b.ECol),
	)
}

// Sort sorts segments in place using [Compare].
func Sort(segs []Segment) { slices.SortFunc(segs, Compare) }

func netName(n *design.Net) string {
	if n == nil {
		return ""
	}
	return n.Name
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
