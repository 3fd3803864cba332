package design

import (
	"fmt"
	"slices"
	"strings"
)

// Direction is a layer's preferred routing direction.
type Direction byte

const (
	// Horizontal layers route along a row (column index changes).
	Horizontal Direction = 'H'
	// Vertical layers route along a column (row index changes).
	Vertical Direction = 'V'
)

// ParseDirection parses "H"/"V" (case-insensitive, also "horizontal"/"vertical").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return 0, fmt.Errorf("invalid direction %q (must be H or V)", s)
}

// String returns "H" or "V".
func (d Direction) String() string { return string(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d != Horizontal && d != Vertical {
		return nil, fmt.Errorf("invalid direction %d", d)
	}
	return []byte{byte(d)}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Layer is one routing layer of the stack.
type Layer struct {
	Idx       int       // 0-based position in the stack
	Name      string    // Unique layer name (e.g. "M1")
	Direction Direction // Preferred routing direction
	Factor    int64     // Weight factor for wires and vias on this layer
	Supply    int       // Default routing supply per gcell
}

// Master is a cell type with named pins.
type Master struct {
	Name string
	Pins map[string]*MasterPin
}

// MasterPin is a pin of a master, assigned to a layer.
type MasterPin struct {
	Name  string
	Layer *Layer
}

// PinLayer returns the layer the pin is assigned to.
func (p *MasterPin) PinLayer() *Layer { return p.Layer }

// Instance is a placed cell.
type Instance struct {
	Name   string
	Master *Master
	Row    int
	Col    int
}

// Pin is an instance pin taking part in a net.
type Pin struct {
	Inst      *Instance
	MasterPin *MasterPin
}

// Layer returns the index of the pin's layer.
func (p Pin) Layer() int { return p.MasterPin.Layer.Idx }

// Net is a set of pins to connect.
type Net struct {
	Name            string
	Pins            []Pin
	MinRoutingLayer *Layer // Lowest layer the net may route on
}

// MinLayer returns the index of the net's minimum routing layer.
func (n *Net) MinLayer() int { return n.MinRoutingLayer.Idx }

// Route is a serialized route segment. Endpoints are inclusive gcells.
type Route struct {
	Net    string
	SRow   int
	SCol   int
	SLayer int
	ERow   int
	ECol   int
	ELayer int
}

// SupplyAdjustment changes the supply of a single gcell relative to its
// layer's default.
type SupplyAdjustment struct {
	Row, Col, Layer int
	Delta           int
}

// Design is a fully resolved design.
//
// The zero value is not usable; build designs with [Read] or [ReadFile].
type Design struct {
	RowBegin, RowEnd int
	ColBegin, ColEnd int

	Layers      []*Layer
	Adjustments []SupplyAdjustment
	Masters     []*Master
	Instances   []*Instance
	Nets        []*Net
	Routes      []Route

	instByName map[string]*Instance
	netByName  map[string]*Net
	layerNames map[string]*Layer
}

// Rows returns the number of grid rows.
func (d *Design) Rows() int { return d.RowEnd - d.RowBegin + 1 }

// Cols returns the number of grid columns.
func (d *Design) Cols() int { return d.ColEnd - d.ColBegin + 1 }

// LayerCount returns the number of layers.
func (d *Design) LayerCount() int { return len(d.Layers) }

// Instance returns the instance with the given name.
func (d *Design) Instance(name string) (*Instance, bool) {
	inst, ok := d.instByName[name]
	return inst, ok
}

// Net returns the net with the given name.
func (d *Design) Net(name string) (*Net, bool) {
	n, ok := d.netByName[name]
	return n, ok
}

// Layer returns the layer with the given name.
func (d *Design) Layer(name string) (*Layer, bool) {
	l, ok := d.layerNames[name]
	return l, ok
}

// LayerFactors returns the weight factor of every layer, indexed by layer.
func (d *Design) LayerFactors() []int64 {
	out := make([]int64, len(d.Layers))
	for i, l := range d.Layers {
		out[i] = l.Factor
	}
	return out
}

// LayerDirections returns the routing direction of every layer, indexed by layer.
func (d *Design) LayerDirections() []Direction {
	out := make([]Direction, len(d.Layers))
	for i, l := range d.Layers {
		out[i] = l.Direction
	}
	return out
}

// RoutesOf returns the serialized routes belonging to the named net.
func (d *Design) RoutesOf(net string) []Route {
	var out []Route
	for _, r := range d.Routes {
		if r.Net == net {
			out = append(out, r)
		}
	}
	return out
}

// SetRoutes replaces the stored routes of the named net.
func (d *Design) SetRoutes(net string, routes []Route) {
	d.Routes = slices.DeleteFunc(d.Routes, func(r Route) bool { return r.Net == net })
	d.Routes = append(d.Routes, routes...)
}

func (d *Design) inGrid(row, col int) bool {
	return row >= d.RowBegin && row <= d.RowEnd && col >= d.ColBegin && col <= d.ColEnd
}

func (d *Design) index() {
	d.instByName = make(map[string]*Instance, len(d.Instances))
	for _, inst := range d.Instances {
		d.instByName[inst.Name] = inst
	}
	d.netByName = make(map[string]*Net, len(d.Nets))
	for _, n := range d.Nets {
		d.netByName[n.Name] = n
	}
	d.layerNames = make(map[string]*Layer, len(d.Layers))
	for _, l := range d.Layers {
		d.layerNames[l.Name] = l
	}
}
