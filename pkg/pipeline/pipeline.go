// Package pipeline runs the routing pipeline shared by the CLI and the HTTP
// service.
//
// The pipeline has three stages:
//
//  1. Load: decode and validate a design file
//  2. Route: rip up and reroute every net (or a single net) on a fresh grid
//  3. Render: draw the routed design as DOT, SVG, PNG or PDF
//
// Routing results and rendered artifacts are cached by a hash of the design
// bytes and every option that changes the output, so repeated runs over the
// same input are served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{Config: cfg, Formats: []string{"svg"}}
//	if err := opts.LoadFile("design.json"); err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("routed.json", result.Output, 0o644)
package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellroute/pkg/cache"
	"github.com/matzehuels/cellroute/pkg/config"
	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/render"
	"github.com/matzehuels/cellroute/pkg/router"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Source names the design in logs and hooks (a file path or "request").
	Source string `json:"source,omitempty"`

	// Design is the design file contents (JSON).
	Design []byte `json:"-"`

	// Net restricts rerouting to one net. Empty runs a full sweep.
	Net string `json:"net,omitempty"`

	// Config holds solver, padding and layer overrides.
	Config config.Config `json:"-"`

	// Render options. No formats skips the render stage.
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Refresh bypasses cached routing results.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// RouterHooks receives sweep progress. Nil uses the registered
	// observability.Router hooks.
	RouterHooks observability.RouterHooks `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Routed is the outcome of the route stage.
type Routed struct {
	// Design is the design with every net's final route stored in Routes.
	Design *design.Design

	// Output is Design encoded as a design file.
	Output []byte

	// Sweep is set for a full sweep, Net for a single-net run.
	Sweep *router.SweepStats
	Net   *router.NetStats
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Routed

	// DesignHash is the content hash of the input design.
	DesignHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nets       int
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RouteHit  bool // Whether the routing result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "format")
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// LoadFile reads the design file at path into o.Design and sets o.Source.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.ErrCodeFileNotFound, err, "design file %s", path)
		}
		return fmt.Errorf("read design: %w", err)
	}
	o.Design = data
	o.Source = path
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Design) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "design is required")
	}
	if o.Net != "" {
		if err := errs.ValidateName("net", o.Net); err != nil {
			return err
		}
	}
	if o.Source == "" {
		o.Source = "design"
	}
	o.Config.SetDefaults()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns cache key options for the route stage.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	pad := o.Config.PaddingValue()
	return cache.ResultKeyOpts{
		Net:        o.Net,
		Solver:     o.Config.Solver,
		RowColPad:  pad.RowCol,
		LayerPad:   pad.Layer,
		Factors:    o.Config.Layers.Factors,
		Directions: o.Config.Layers.Directions,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Net:    o.Net,
		Labels: o.Labels,
	}
}
