package route

import (
	"slices"

	"github.com/matzehuels/cellroute/pkg/design"
)

// line identifies the infinite axis-parallel line a segment lies on.
type line struct {
	net   *design.Net
	axis  Axis
	fixed [2]int
}

type interval struct{ lo, hi int }

// Reduce coalesces a route into the minimal set of segments covering the same
// unit steps. Segments are normalized, zero-length pieces are dropped and
// collinear pieces that overlap or share an endpoint are merged. The result is
// sorted with [Compare], and Reduce(Reduce(x)) equals Reduce(x).
//
// Segments that touch only at a corner are never merged, since a merged
// segment would cover steps that neither input covers.
func Reduce(segs []Segment) []Segment {
	lines := make(map[line][]interval)
	var order []line
	for _, s := range segs {
		s = s.Normalize()
		axis := s.Axis()
		if axis == None {
			continue
		}
		k, iv := split(s, axis)
		if _, ok := lines[k]; !ok {
			order = append(order, k)
		}
		lines[k] = append(lines[k], iv)
	}

	out := make([]Segment, 0, len(segs))
	for _, k := range order {
		ivs := lines[k]
		slices.SortFunc(ivs, func(a, b interval) int { return a.lo - b.lo })
		cur := ivs[0]
		for _, iv := range ivs[1:] {
			if iv.lo <= cur.hi {
				cur.hi = max(cur.hi, iv.hi)
				continue
			}
			out = append(out, join(k, cur))
			cur = iv
		}
		out = append(out, join(k, cur))
	}
	Sort(out)
	return out
}

func split(s Segment, axis Axis) (line, interval) {
	switch axis {
	case Row:
		return line{s.Net, axis, [2]int{s.SCol, s.SLayer}}, interval{s.SRow, s.ERow}
	case Col:
		return line{s.Net, axis, [2]int{s.SRow, s.SLayer}}, interval{s.SCol, s.ECol}
	default:
		return line{s.Net, axis, [2]int{s.SRow, s.SCol}}, interval{s.SLayer, s.ELayer}
	}
}

func join(k line, iv interval) Segment {
	switch k.axis {
	case Row:
		return Segment{SRow: iv.lo, SCol: k.fixed[0], SLayer: k.fixed[1], ERow: iv.hi, ECol: k.fixed[0], ELayer: k.fixed[1], Net: k.net}
	case Col:
		return Segment{SRow: k.fixed[0], SCol: iv.lo, SLayer: k.fixed[1], ERow: k.fixed[0], ECol: iv.hi, ELayer: k.fixed[1], Net: k.net}
	default:
		return Segment{SRow: k.fixed[0], SCol: k.fixed[1], SLayer: iv.lo, ERow: k.fixed[0], ECol: k.fixed[1], ELayer: iv.hi, Net: k.net}
	}
}
