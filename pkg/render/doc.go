// Package render draws routed designs as Graphviz diagrams.
//
// # Overview
//
// [ToDOT] turns a design's routes into DOT source where every gcell used by a
// route is a pinned node (x = column, y = row, nudged by layer) and every
// route segment is an edge colored by net. Pins are drawn as boxes labeled
// with their instance. The source is laid out with the neato engine so node
// positions follow the grid.
//
//	dot := render.ToDOT(d, render.Options{Net: "n1"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Formats
//
// [Render] dispatches on format: "dot" returns the source, "svg" and "png"
// render in-process with [github.com/goccy/go-graphviz], and "pdf" converts the
// SVG with the external rsvg-convert tool (from librsvg).
package render
