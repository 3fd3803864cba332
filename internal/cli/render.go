package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/pipeline"
)

// renderCommand creates the render command for drawing stored routes.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [design.json]",
		Short: "Draw the routes stored in a design",
		Long: `Draw the routes stored in a design.

The design is not rerouted: render draws the routes as they are, typically the
output of 'route'. Each net gets its own color, vias are dashed and pins are
boxes labelled instance/pin.`,
		Example: `  cellroute render design.routed.json -f svg,png
  cellroute render design.routed.json --net clk -o clk.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDesign,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if len(opts.Formats) == 0 {
				opts.Formats = []string{"svg"}
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.Net, "net", "", "draw only this net")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label gcells")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the design and renders its routes.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	opts.Logger = loggerFromContext(ctx)

	if err := opts.LoadFile(input); err != nil {
		return err
	}
	d, err := design.Unmarshal(opts.Design)
	if err != nil {
		return err
	}
	if opts.Net != "" {
		if _, ok := d.Net(opts.Net); !ok {
			printWarning("net %s not found in %s", opts.Net, input)
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering routes...")
	spinner.Start()
	prog := newProgress(opts.Logger)

	routed := pipeline.Routed{Design: d, Output: opts.Design}
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, routed, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d nets", len(d.Nets)))
	prog.done("Render finished", "formats", len(opts.Formats), "cached", cacheHit)

	return writeArtifacts(artifacts, opts.Formats, basePath(output, input), cacheHit)
}
