package route

import "github.com/matzehuels/cellroute/pkg/design"

// FromDesign converts serialized routes of net into segments.
func FromDesign(net *design.Net, routes []design.Route) []Segment {
	out := make([]Segment, 0, len(routes))
	for _, r := range routes {
		out = append(out, Segment{
			SRow: r.SRow, SCol: r.SCol, SLayer: r.SLayer,
			ERow: r.ERow, ECol: r.ECol, ELayer: r.ELayer,
			Net: net,
		})
	}
	return out
}

// ToDesign converts segments into serialized routes for the named net.
func ToDesign(net string, segs []Segment) []design.Route {
	out := make([]design.Route, 0, len(segs))
	for _, s := range segs {
		out = append(out, design.Route{
			Net:  net,
			SRow: s.SRow, SCol: s.SCol, SLayer: s.SLayer,
			ERow: s.ERow, ECol: s.ECol, ELayer: s.ELayer,
		})
	}
	return out
}
