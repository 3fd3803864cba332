package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/router"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Solver != "sph" {
		t.Errorf("Solver = %q, want sph", c.Solver)
	}
	if got := c.PaddingValue(); got != router.DefaultPadding() {
		t.Errorf("Padding = %+v, want %+v", got, router.DefaultPadding())
	}
	if c.Cache.TTL.Duration != DefaultCacheTTL {
		t.Errorf("TTL = %v, want %v", c.Cache.TTL, DefaultCacheTTL)
	}
	if c.Server.Addr != DefaultServerAddr {
		t.Errorf("Addr = %q, want %q", c.Server.Addr, DefaultServerAddr)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

const tomlConfig = `
solver = "kmb"
region = "grid"

[padding]
row_col = 3
layer = 0

[layers]
factors = [1, 2]
directions = ["V", "H"]

[cache]
dir = "/tmp/cellroute"
ttl = "90s"

[server]
addr = ":9000"
`

const yamlConfig = `
solver: kmb
region: grid
padding:
  row_col: 3
  layer: 0
layers:
  factors: [1, 2]
  directions: [V, H]
cache:
  dir: /tmp/cellroute
  ttl: 90s
server:
  addr: ":9000"
`

func TestParseFormats(t *testing.T) {
	for _, tt := range []struct{ format, data string }{
		{"toml", tomlConfig},
		{"yaml", yamlConfig},
		{"yml", yamlConfig},
	} {
		t.Run(tt.format, func(t *testing.T) {
			c, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if c.Solver != "kmb" || c.Region != "grid" {
				t.Errorf("Solver, Region = %q, %q", c.Solver, c.Region)
			}
			if got := c.PaddingValue(); got != (router.Padding{RowCol: 3, Layer: 0}) {
				t.Errorf("Padding = %+v", got)
			}
			if diff := cmp.Diff([]int64{1, 2}, c.Layers.Factors); diff != "" {
				t.Errorf("Factors (-want +got):\n%s", diff)
			}
			if c.Cache.Dir != "/tmp/cellroute" || c.Cache.TTL.Duration != 90*time.Second {
				t.Errorf("Cache = %+v", c.Cache)
			}
			if c.Server.Addr != ":9000" {
				t.Errorf("Addr = %q", c.Server.Addr)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, format, data string
	}{
		{"unknown solver", "toml", `solver = "exact"`},
		{"bad region", "toml", `region = "box"`},
		{"negative padding", "toml", "[padding]\nrow_col = -1"},
		{"bad direction", "yaml", "layers:\n  directions: [X]"},
		{"negative factor", "yaml", "layers:\n  factors: [-1]"},
		{"bad ttl", "yaml", "cache:\n  ttl: soon"},
		{"syntax", "toml", `solver = `},
		{"format", "json", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cellroute.toml")
	if err := os.WriteFile(path, []byte(tomlConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Solver != "kmb" {
		t.Errorf("Solver = %q, want kmb", c.Solver)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}

	c, err = Load("")
	if err != nil || c.Solver != "sph" {
		t.Errorf("Load(\"\") = %+v, %v", c, err)
	}
}

func TestLayerParams(t *testing.T) {
	d, err := design.Resolve(design.File{
		Grid: design.GridJSON{RowEnd: 3, ColEnd: 3},
		Layers: []design.LayerJSON{
			{Name: "M1", Direction: design.Horizontal, Factor: 1, Supply: 1},
			{Name: "M2", Direction: design.Vertical, Factor: 1, Supply: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	c := Default()
	factors, dirs, err := c.LayerParams(d)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(factors, []int64{1, 1}) || !cmp.Equal(dirs, []design.Direction{design.Horizontal, design.Vertical}) {
		t.Errorf("LayerParams = %v, %v; want design values", factors, dirs)
	}

	c.Layers = LayersConfig{Factors: []int64{3, 4}, Directions: []string{"v", "h"}}
	factors, dirs, err = c.LayerParams(d)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(factors, []int64{3, 4}) || !cmp.Equal(dirs, []design.Direction{design.Vertical, design.Horizontal}) {
		t.Errorf("LayerParams = %v, %v; want overrides", factors, dirs)
	}
	if got := d.LayerFactors(); !cmp.Equal(got, []int64{1, 1}) {
		t.Errorf("design factors modified: %v", got)
	}

	c.Layers.Factors = []int64{1}
	if _, _, err := c.LayerParams(d); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
