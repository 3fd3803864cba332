package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
)

func testDesign(t *testing.T) *design.Design {
	t.Helper()
	d, err := design.Resolve(design.File{
		Grid: design.GridJSON{RowEnd: 4, ColEnd: 4},
		Layers: []design.LayerJSON{
			{Name: "M1", Direction: design.Horizontal, Factor: 1, Supply: 2},
			{Name: "M2", Direction: design.Vertical, Factor: 1, Supply: 2},
		},
		Masters:   []design.MasterJSON{{Name: "INV", Pins: []design.MasterPinJSON{{Name: "A", Layer: "M1"}, {Name: "Y", Layer: "M1"}}}},
		Instances: []design.InstanceJSON{{Name: "u1", Master: "INV", Row: 1, Col: 1}, {Name: "u2", Master: "INV", Row: 3, Col: 1}},
		Nets: []design.NetJSON{
			{Name: "a", Pins: []design.PinJSON{{Inst: "u1", Pin: "Y"}, {Inst: "u2", Pin: "A"}}},
			{Name: "b", Pins: []design.PinJSON{{Inst: "u2", Pin: "Y"}}},
		},
		Routes: []design.RouteJSON{
			{Net: "a", From: [3]int{1, 1, 0}, To: [3]int{1, 1, 1}},
			{Net: "a", From: [3]int{1, 1, 1}, To: [3]int{3, 1, 1}},
			{Net: "a", From: [3]int{3, 1, 1}, To: [3]int{3, 1, 0}},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return d
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDesign(t), Options{})

	for _, want := range []string{
		"graph routes {",
		"layout=neato;",
		`"1,1,0" -- "1,1,1"`,
		`"1,1,1" -- "3,1,1"`,
		`label="u1/Y"`,
		`label="u2/Y"`,
		"style=dashed",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if got := strings.Count(dot, " -- "); got != 3 {
		t.Errorf("edge count = %d, want 3", got)
	}
}

func TestToDOTNetFilter(t *testing.T) {
	dot := ToDOT(testDesign(t), Options{Net: "b"})
	if strings.Contains(dot, " -- ") {
		t.Errorf("net b has no routes, got edges:\n%s", dot)
	}
	if strings.Contains(dot, "u1/Y") {
		t.Errorf("pins of net a drawn for filter b:\n%s", dot)
	}
	if !strings.Contains(dot, "u2/Y") {
		t.Errorf("pin of net b missing:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	d := testDesign(t)
	if ToDOT(d, Options{Labels: true}) != ToDOT(d, Options{Labels: true}) {
		t.Error("ToDOT output is not deterministic")
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestRenderDOTAndSVG(t *testing.T) {
	ctx := context.Background()
	dot := ToDOT(testDesign(t), Options{})

	out, err := Render(ctx, dot, FormatDOT)
	if err != nil || string(out) != dot {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}

	svg, err := Render(ctx, dot, FormatSVG)
	if err != nil {
		t.Fatalf("Render(svg): %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.200s", svg)
	}

	if _, err := Render(ctx, dot, "gif"); err == nil {
		t.Error("Render(gif) should fail")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`) {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestToPDFMissingConverter(t *testing.T) {
	old := rsvgConvert
	rsvgConvert = "cellroute-no-such-converter"
	defer func() { rsvgConvert = old }()

	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("ToPDF error = %v, want UNSUPPORTED", err)
	}
}
