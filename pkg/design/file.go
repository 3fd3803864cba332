package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/cellroute/pkg/errors"
)

// =============================================================================
// Serialization Types
// =============================================================================

// File is the JSON representation of a design.
type File struct {
	Grid        GridJSON         `json:"grid"`
	Layers      []LayerJSON      `json:"layers"`
	Adjustments []AdjustmentJSON `json:"supply_adjustments,omitempty"`
	Masters     []MasterJSON     `json:"masters"`
	Instances   []InstanceJSON   `json:"instances"`
	Nets        []NetJSON        `json:"nets"`
	Routes      []RouteJSON      `json:"routes,omitempty"`
}

// GridJSON holds the inclusive row and column ranges.
type GridJSON struct {
	RowBegin int `json:"row_begin"`
	RowEnd   int `json:"row_end"`
	ColBegin int `json:"col_begin"`
	ColEnd   int `json:"col_end"`
}

// LayerJSON describes one layer. Layers are listed bottom-up.
type LayerJSON struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
	Factor    int64     `json:"factor"`
	Supply    int       `json:"supply"`
}

// AdjustmentJSON changes the supply of one gcell.
type AdjustmentJSON struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Layer int `json:"layer"`
	Delta int `json:"delta"`
}

// MasterJSON describes a master cell.
type MasterJSON struct {
	Name string          `json:"name"`
	Pins []MasterPinJSON `json:"pins"`
}

// MasterPinJSON assigns a master pin to a layer (by name).
type MasterPinJSON struct {
	Name  string `json:"name"`
	Layer string `json:"layer"`
}

// InstanceJSON places an instance of a master.
type InstanceJSON struct {
	Name   string `json:"name"`
	Master string `json:"master"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// NetJSON lists a net's pins. MinLayer defaults to the bottom layer.
type NetJSON struct {
	Name     string    `json:"name"`
	MinLayer string    `json:"min_layer,omitempty"`
	Pins     []PinJSON `json:"pins"`
}

// PinJSON references an instance pin.
type PinJSON struct {
	Inst string `json:"inst"`
	Pin  string `json:"pin"`
}

// RouteJSON is a route segment between two [row, col, layer] gcells.
type RouteJSON struct {
	Net  string `json:"net"`
	From [3]int `json:"from"`
	To   [3]int `json:"to"`
}

// =============================================================================
// Read / Write
// =============================================================================

// ReadFile reads and resolves a design from a JSON file.
func ReadFile(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "design file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes and resolves a design from r.
func Read(r io.Reader) (*Design, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDesign, err, "decode design")
	}
	return Resolve(f)
}

// Unmarshal decodes and resolves a design from JSON bytes.
func Unmarshal(data []byte) (*Design, error) {
	return Read(bytes.NewReader(data))
}

// Marshal encodes d as indented JSON.
func Marshal(d *Design) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes d to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(d *Design, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(d, f)
}

// Write encodes d as indented JSON to w.
func Write(d *Design, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Export(d))
}

// =============================================================================
// Conversion
// =============================================================================

// Export converts a resolved design back to its serialization form.
func Export(d *Design) File {
	f := File{
		Grid: GridJSON{RowBegin: d.RowBegin, RowEnd: d.RowEnd, ColBegin: d.ColBegin, ColEnd: d.ColEnd},
	}
	for _, l := range d.Layers {
		f.Layers = append(f.Layers, LayerJSON{Name: l.Name, Direction: l.Direction, Factor: l.Factor, Supply: l.Supply})
	}
	for _, a := range d.Adjustments {
		f.Adjustments = append(f.Adjustments, AdjustmentJSON{Row: a.Row, Col: a.Col, Layer: a.Layer, Delta: a.Delta})
	}
	for _, m := range d.Masters {
		mj := MasterJSON{Name: m.Name}
		for _, name := range sortedKeys(m.Pins) {
			mj.Pins = append(mj.Pins, MasterPinJSON{Name: name, Layer: m.Pins[name].Layer.Name})
		}
		f.Masters = append(f.Masters, mj)
	}
	for _, inst := range d.Instances {
		f.Instances = append(f.Instances, InstanceJSON{Name: inst.Name, Master: inst.Master.Name, Row: inst.Row, Col: inst.Col})
	}
	for _, n := range d.Nets {
		nj := NetJSON{Name: n.Name, MinLayer: n.MinRoutingLayer.Name}
		for _, p := range n.Pins {
			nj.Pins = append(nj.Pins, PinJSON{Inst: p.Inst.Name, Pin: p.MasterPin.Name})
		}
		f.Nets = append(f.Nets, nj)
	}
	for _, r := range d.Routes {
		f.Routes = append(f.Routes, RouteJSON{
			Net:  r.Net,
			From: [3]int{r.SRow, r.SCol, r.SLayer},
			To:   [3]int{r.ERow, r.ECol, r.ELayer},
		})
	}
	return f
}

// Resolve validates a serialized design and links all name references.
// Errors carry the INVALID_DESIGN (or INVALID_NAME) code.
func Resolve(f File) (*Design, error) {
	g := f.Grid
	if g.RowEnd < g.RowBegin || g.ColEnd < g.ColBegin {
		return nil, errs.New(errs.ErrCodeInvalidDesign, "empty grid: rows [%d,%d], cols [%d,%d]", g.RowBegin, g.RowEnd, g.ColBegin, g.ColEnd)
	}
	if len(f.Layers) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidDesign, "design has no layers")
	}

	d := &Design{RowBegin: g.RowBegin, RowEnd: g.RowEnd, ColBegin: g.ColBegin, ColEnd: g.ColEnd}
	layers := make(map[string]*Layer, len(f.Layers))
	for i, lj := range f.Layers {
		if err := errs.ValidateName("layer", lj.Name); err != nil {
			return nil, err
		}
		if _, dup := layers[lj.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "duplicate layer %q", lj.Name)
		}
		if lj.Direction != Horizontal && lj.Direction != Vertical {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "layer %q has no direction", lj.Name)
		}
		if lj.Factor < 0 || lj.Supply < 0 {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "layer %q has negative factor or supply", lj.Name)
		}
		l := &Layer{Idx: i, Name: lj.Name, Direction: lj.Direction, Factor: lj.Factor, Supply: lj.Supply}
		layers[l.Name] = l
		d.Layers = append(d.Layers, l)
	}

	for _, a := range f.Adjustments {
		if !d.inGrid(a.Row, a.Col) || a.Layer < 0 || a.Layer >= len(d.Layers) {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "supply adjustment at (%d,%d,%d) outside grid", a.Row, a.Col, a.Layer)
		}
		d.Adjustments = append(d.Adjustments, SupplyAdjustment{Row: a.Row, Col: a.Col, Layer: a.Layer, Delta: a.Delta})
	}

	masters := make(map[string]*Master, len(f.Masters))
	for _, mj := range f.Masters {
		if err := errs.ValidateName("master", mj.Name); err != nil {
			return nil, err
		}
		if _, dup := masters[mj.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "duplicate master %q", mj.Name)
		}
		m := &Master{Name: mj.Name, Pins: make(map[string]*MasterPin, len(mj.Pins))}
		for _, pj := range mj.Pins {
			l, ok := layers[pj.Layer]
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidDesign, "master %s pin %s: unknown layer %q", mj.Name, pj.Name, pj.Layer)
			}
			m.Pins[pj.Name] = &MasterPin{Name: pj.Name, Layer: l}
		}
		masters[m.Name] = m
		d.Masters = append(d.Masters, m)
	}

	insts := make(map[string]*Instance, len(f.Instances))
	for _, ij := range f.Instances {
		if err := errs.ValidateName("instance", ij.Name); err != nil {
			return nil, err
		}
		if _, dup := insts[ij.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "duplicate instance %q", ij.Name)
		}
		m, ok := masters[ij.Master]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "instance %s: unknown master %q", ij.Name, ij.Master)
		}
		if !d.inGrid(ij.Row, ij.Col) {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "instance %s placed outside grid at (%d,%d)", ij.Name, ij.Row, ij.Col)
		}
		inst := &Instance{Name: ij.Name, Master: m, Row: ij.Row, Col: ij.Col}
		insts[inst.Name] = inst
		d.Instances = append(d.Instances, inst)
	}

	nets := make(map[string]*Net, len(f.Nets))
	for _, nj := range f.Nets {
		if err := errs.ValidateName("net", nj.Name); err != nil {
			return nil, err
		}
		if _, dup := nets[nj.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "duplicate net %q", nj.Name)
		}
		n := &Net{Name: nj.Name, MinRoutingLayer: d.Layers[0]}
		if nj.MinLayer != "" {
			l, ok := layers[nj.MinLayer]
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidDesign, "net %s: unknown min layer %q", nj.Name, nj.MinLayer)
			}
			n.MinRoutingLayer = l
		}
		for _, pj := range nj.Pins {
			inst, ok := insts[pj.Inst]
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidDesign, "net %s: unknown instance %q", nj.Name, pj.Inst)
			}
			mp, ok := inst.Master.Pins[pj.Pin]
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidDesign, "net %s: master %s has no pin %q", nj.Name, inst.Master.Name, pj.Pin)
			}
			n.Pins = append(n.Pins, Pin{Inst: inst, MasterPin: mp})
		}
		nets[n.Name] = n
		d.Nets = append(d.Nets, n)
	}

	for _, rj := range f.Routes {
		if _, ok := nets[rj.Net]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "route references unknown net %q", rj.Net)
		}
		for _, p := range [][3]int{rj.From, rj.To} {
			if !d.inGrid(p[0], p[1]) || p[2] < 0 || p[2] >= len(d.Layers) {
				return nil, errs.New(errs.ErrCodeInvalidDesign, "net %s: route endpoint %v outside grid", rj.Net, p)
			}
		}
		if !axisAligned(rj.From, rj.To) {
			return nil, errs.New(errs.ErrCodeInvalidDesign, "net %s: route %v-%v is not axis-aligned", rj.Net, rj.From, rj.To)
		}
		d.Routes = append(d.Routes, Route{
			Net:  rj.Net,
			SRow: rj.From[0], SCol: rj.From[1], SLayer: rj.From[2],
			ERow: rj.To[0], ECol: rj.To[1], ELayer: rj.To[2],
		})
	}

	d.index()
	return d, nil
}

// axisAligned reports whether a and b differ in at most one coordinate.
func axisAligned(a, b [3]int) bool {
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff <= 1
}
