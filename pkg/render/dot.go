package render

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/route"
)

// Options configures diagram generation.
type Options struct {
	// Net restricts the diagram to one net. Empty draws every net.
	Net string

	// Labels adds gcell coordinates to node labels.
	Labels bool
}

// palette cycles through net colors.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	cellSpacing = 1.0  // inches between neighbouring gcells
	layerNudge  = 0.12 // inches each layer is offset by
)

// ToDOT converts the routes of d to Graphviz DOT source.
//
// Nets are drawn in name order. Segments come from d.Routes; store routes in
// the design first (for example with grid.Manager.WriteBack).
func ToDOT(d *design.Design, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph routes {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.08];\n")
	buf.WriteString("  edge [penwidth=3];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("rows %d-%d, cols %d-%d, %d layers",
		d.RowBegin, d.RowEnd, d.ColBegin, d.ColEnd, d.LayerCount()))
	buf.WriteString("\n")

	nets := slices.Clone(d.Nets)
	slices.SortFunc(nets, func(a, b *design.Net) int { return cmp.Compare(a.Name, b.Name) })

	nodes := make(map[route.Point]string)
	var edges []string
	for i, n := range nets {
		if opts.Net != "" && n.Name != opts.Net {
			continue
		}
		color := palette[i%len(palette)]
		for _, s := range route.Reduce(route.FromDesign(n, d.RoutesOf(n.Name))) {
			a, b := s.Start(), s.End()
			nodes[a], nodes[b] = "", ""
			style := ""
			if s.IsVia() {
				style = ", style=dashed"
			}
			edges = append(edges, fmt.Sprintf("  %q -- %q [color=%q, tooltip=%q%s];",
				nodeID(a), nodeID(b), color, n.Name+" "+s.String(), style))
		}
		for _, p := range n.Pins {
			pt := route.Point{Row: p.Inst.Row, Col: p.Inst.Col, Layer: p.Layer()}
			nodes[pt] = p.Inst.Name + "/" + p.MasterPin.Name
		}
	}

	pts := slices.SortedFunc(maps.Keys(nodes), func(a, b route.Point) int {
		return cmp.Or(cmp.Compare(a.Layer, b.Layer), cmp.Compare(a.Row, b.Row), cmp.Compare(a.Col, b.Col))
	})
	for _, p := range pts {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), strings.Join(nodeAttrs(p, nodes[p], opts.Labels), ", "))
	}
	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p route.Point) string {
	return fmt.Sprintf("%d,%d,%d", p.Row, p.Col, p.Layer)
}

func nodeAttrs(p route.Point, pin string, labels bool) []string {
	x := float64(p.Col)*cellSpacing + float64(p.Layer)*layerNudge
	y := -float64(p.Row)*cellSpacing + float64(p.Layer)*layerNudge
	attrs := []string{fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y)}
	switch {
	case pin != "":
		attrs = append(attrs, "shape=box", "fontsize=10", fmt.Sprintf("label=%q", pin))
	case labels:
		attrs = append(attrs, "shape=plaintext", "fontsize=8", fmt.Sprintf("label=%q", nodeID(p)))
	}
	return attrs
}
