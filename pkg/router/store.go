package router

import (
	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/grid"
	"github.com/matzehuels/cellroute/pkg/route"
)

// Store is the grid state the router reads supply from and writes routes to.
// [grid.Manager] implements it.
type Store interface {
	RowBegin() int
	RowEnd() int
	ColBegin() int
	ColEnd() int
	LayerCount() int

	Supply(row, col, layer int) int
	CellCoordinate(inst *design.Instance) (row, col int)

	NetRoutes() map[*design.Net]*grid.NetRoute
	RemoveNet(net *design.Net)
	AddNet(net *design.Net)
	RouteCost(net *design.Net, segs []route.Segment) int64
}

var _ Store = (*grid.Manager)(nil)
