package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellroute/pkg/cache"
	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/grid"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/render"
	"github.com/matzehuels/cellroute/pkg/router"
	"github.com/matzehuels/cellroute/pkg/steiner"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP service use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every run builds
// its own grid, so multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → route → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		DesignHash: cache.Hash(opts.Design),
		Artifacts:  make(map[string][]byte),
	}

	// Stage 1+2: Load and route
	routeStart := time.Now()
	routed, routeHit, err := r.RouteWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Routed = routed
	result.Stats.Nets = len(routed.Design.Nets)
	result.Stats.RouteTime = time.Since(routeStart)
	result.CacheInfo.RouteHit = routeHit

	r.Logger.Info("routed design",
		"source", opts.Source,
		"nets", result.Stats.Nets,
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, routed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load decodes and validates the design in opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*design.Design, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()

	d, err := design.Unmarshal(opts.Design)
	nets := 0
	if d != nil {
		nets = len(d.Nets)
	}
	hooks.OnLoadComplete(ctx, opts.Source, nets, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded design",
		"source", opts.Source,
		"rows", d.Rows(),
		"cols", d.Cols(),
		"layers", d.LayerCount(),
		"nets", nets)
	return d, nil
}

// RouteWithCacheInfo loads and routes the design with caching and returns
// cache hit info.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, opts Options) (Routed, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Routed{}, false, err
	}

	cacheKey := r.Keyer.ResultKey(cache.Hash(opts.Design), opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			routed, err := decodeRouted(data)
			if err == nil {
				return routed, true, nil // Cache hit
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey, "err", err)
		}
	}

	d, err := r.Load(ctx, opts)
	if err != nil {
		return Routed{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRouteStart(ctx, len(d.Nets))
	start := time.Now()
	routed, err := Route(ctx, d, opts)
	hooks.OnRouteComplete(ctx, time.Since(start), err)
	if err != nil {
		return Routed{}, false, err
	}

	if data, err := encodeRouted(routed); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, opts.Config.Cache.TTL.Duration); err != nil {
			r.Logger.Warn("failed to cache routing result", "err", err)
		}
	}

	return routed, false, nil // Cache miss
}

// Route reroutes d in place according to opts and stores the final routes in
// d.Routes. opts must have defaults set.
func Route(ctx context.Context, d *design.Design, opts Options) (Routed, error) {
	factors, dirs, err := opts.Config.LayerParams(d)
	if err != nil {
		return Routed{}, err
	}
	solver, err := steiner.New(opts.Config.Solver)
	if err != nil {
		return Routed{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "solver")
	}

	store := grid.New(d, grid.WithFactors(factors))
	rt := router.New(store, factors, dirs,
		router.WithSolver(solver),
		router.WithLogger(opts.Logger),
		router.WithPadding(opts.Config.PaddingValue()),
		router.WithHooks(opts.RouterHooks))

	var out Routed
	if opts.Net != "" {
		net, ok := d.Net(opts.Net)
		if !ok {
			return Routed{}, errs.New(errs.ErrCodeNetNotFound, "net %q not found", opts.Net)
		}
		if err := ctx.Err(); err != nil {
			return Routed{}, err
		}
		stats := rt.RerouteNet(ctx, net)
		out.Net = &stats
	} else {
		stats, err := rt.RerouteAll(ctx)
		if err != nil {
			return Routed{}, err
		}
		out.Sweep = &stats
	}

	store.WriteBack()
	data, err := design.Marshal(d)
	if err != nil {
		return Routed{}, errs.Wrap(errs.ErrCodeInternal, err, "encode routed design")
	}
	out.Design = d
	out.Output = data
	return out, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, routed Routed, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	resultHash := cache.Hash(routed.Output)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := renderFormats(ctx, routed.Design, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

func renderFormats(ctx context.Context, d *design.Design, opts Options) (map[string][]byte, error) {
	dot := render.ToDOT(d, render.Options{Net: opts.Net, Labels: opts.Labels})
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Render(ctx, dot, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache encoding
// =============================================================================

// cachedResult keeps the design bytes verbatim so artifact keys derived from
// them match across cache hits.
type cachedResult struct {
	Design []byte             `json:"design"`
	Sweep  *router.SweepStats `json:"sweep,omitempty"`
	Net    *router.NetStats   `json:"net,omitempty"`
}

func encodeRouted(r Routed) ([]byte, error) {
	return json.Marshal(cachedResult{Design: r.Output, Sweep: r.Sweep, Net: r.Net})
}

func decodeRouted(data []byte) (Routed, error) {
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil {
		return Routed{}, err
	}
	d, err := design.Unmarshal(c.Design)
	if err != nil {
		return Routed{}, err
	}
	return Routed{Design: d, Output: c.Design, Sweep: c.Sweep, Net: c.Net}, nil
}
