package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellroute/pkg/config"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/pipeline"
)

// routeFlags holds the flags shared by the route and net commands.
type routeFlags struct {
	output       string // routed design path ("-" for stdout)
	formats      string // comma-separated render formats
	labels       bool   // label gcells in rendered output
	solver       string // Steiner solver override
	padding      int    // row/column padding override
	layerPadding int    // layer padding override
	noCache      bool   // disable caching
	refresh      bool   // ignore cached results
}

func (f *routeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "routed design file (default <input>.routed.json, - for stdout)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "also render the result: dot, svg, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "label gcells in rendered output")
	cmd.Flags().StringVar(&f.solver, "solver", "", "Steiner solver: sph (default), kmb")
	cmd.Flags().IntVar(&f.padding, "padding", 0, "bounding box padding in rows and columns (default 5)")
	cmd.Flags().IntVar(&f.layerPadding, "layer-padding", 0, "bounding box padding in layers (default 1)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// apply copies explicitly set flags over the loaded config.
func (f *routeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("solver") {
		cfg.Solver = f.solver
	}
	if cmd.Flags().Changed("padding") {
		cfg.Padding.RowCol = &f.padding
	}
	if cmd.Flags().Changed("layer-padding") {
		cfg.Padding.Layer = &f.layerPadding
	}
	cfg.SetDefaults()
	return cfg.Validate()
}

// routeCommand creates the route command for a full rip-up and reroute sweep.
func (c *CLI) routeCommand() *cobra.Command {
	var flags routeFlags

	cmd := &cobra.Command{
		Use:   "route [design.json]",
		Short: "Rip up and reroute every net of a design",
		Long: `Rip up and reroute every net of a design.

Nets are visited by descending route cost. Each net is removed from the grid,
rerouted with an approximate Steiner tree and kept only if the new route is
cheaper. The routed design is written as JSON.

Results are cached locally for faster subsequent runs.`,
		Example: `  cellroute route design.json
  cellroute route design.json -o routed.json -f svg --solver kmb`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDesign,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd, args[0], "", &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

// netCommand creates the net command for rerouting a single net.
func (c *CLI) netCommand() *cobra.Command {
	var flags routeFlags

	cmd := &cobra.Command{
		Use:   "net [design.json] [net]",
		Short: "Reroute a single net",
		Long: `Reroute a single net.

The net is ripped up and rerouted with the same rule as 'route': the new route
is kept only if it is cheaper. The command fails if the net cannot be routed.`,
		Example: `  cellroute net design.json clk
  cellroute net design.json n42 -f svg --labels`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeNet,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errs.ValidateName("net", args[1]); err != nil {
				return err
			}
			return c.runRoute(cmd, args[0], args[1], &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

// runRoute executes the pipeline for a full sweep (net == "") or one net.
func (c *CLI) runRoute(cmd *cobra.Command, input, net string, flags *routeFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, &cfg); err != nil {
		return err
	}

	opts := pipeline.Options{
		Net:     net,
		Config:  cfg,
		Formats: parseFormats(flags.formats),
		Labels:  flags.labels,
		Refresh: flags.refresh,
		Logger:  logger,
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if err := opts.LoadFile(input); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	label := "Rerouting nets"
	if net != "" {
		label = fmt.Sprintf("Rerouting %s", net)
	}
	spinner := newSpinnerWithContext(ctx, label+"...")
	opts.RouterHooks = &sweepProgress{spinner: spinner, label: label}
	spinner.Start()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()
	prog.done("Routing finished", "nets", result.Stats.Nets, "cached", result.CacheInfo.RouteHit)

	outPath := flags.output
	if outPath == "" {
		outPath = basePath("", input) + ".routed.json"
	}
	if err := writeOutput(outPath, result.Output); err != nil {
		return err
	}
	if outPath == "-" {
		return c.checkNet(result)
	}

	switch {
	case result.Sweep != nil:
		s := result.Sweep
		printSuccess("Rerouted %d nets, %d improved", s.Nets, s.Improved)
		printStats(result.Stats.Nets, s.CostBefore, s.CostAfter, result.CacheInfo.RouteHit)
		if s.Failed > 0 {
			printWarning("%d nets could not be routed and kept their routes", s.Failed)
		}
	case result.Net != nil:
		n := result.Net
		printSuccess("Rerouted net %s", n.Net)
		printStats(1, n.CostBefore, n.CostAfter, result.CacheInfo.RouteHit)
	}
	printFile(outPath)

	base := strings.TrimSuffix(outPath, ".json")
	if err := writeArtifacts(result.Artifacts, opts.Formats, base, result.CacheInfo.RenderHit); err != nil {
		return err
	}
	if len(opts.Formats) == 0 {
		printNextStep("Render it", fmt.Sprintf("%s render %s -f svg", appName, outPath))
	}
	return c.checkNet(result)
}

// checkNet turns an unroutable single net into an error.
func (c *CLI) checkNet(result *pipeline.Result) error {
	if result.Net != nil && !result.Net.Routed {
		return errs.New(errs.ErrCodeUnroutable, "net %s cannot be routed", result.Net.Net)
	}
	return nil
}

// sweepProgress shows the reroute sweep in the spinner.
type sweepProgress struct {
	observability.NoopRouterHooks
	spinner *Spinner
	label   string
	total   atomic.Int64
	done    atomic.Int64
}

func (p *sweepProgress) OnSweepStart(_ context.Context, _ string, nets int) {
	p.total.Store(int64(nets))
}

func (p *sweepProgress) OnNetRerouted(context.Context, string, int64, int64, bool) {
	if total := p.total.Load(); total > 0 {
		p.spinner.SetMessage(fmt.Sprintf("%s (%d/%d)", p.label, p.done.Add(1), total))
	}
}
