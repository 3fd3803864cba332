package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/pipeline"
)

// netsCommand creates the nets command listing nets with cost and region.
func (c *CLI) netsCommand() *cobra.Command {
	var (
		asJSON bool
		region string
	)

	cmd := &cobra.Command{
		Use:   "nets [design.json]",
		Short: "List the nets of a design with their route cost and region",
		Long: `List the nets of a design with their route cost and region.

The region is the window a net is routed in: the bounding box of its pins
padded by the configured row/column padding ("pins"), or the whole grid
("grid").`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDesign,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("region") {
				cfg.Region = region
			}
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}

			d, err := design.ReadFile(args[0])
			if err != nil {
				return err
			}
			nets, err := pipeline.Summarize(d, cfg)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(nets)
			}
			printNets(nets)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&region, "region", "", "region strategy: pins (default), grid")

	return cmd
}

func printNets(nets []pipeline.NetSummary) {
	rows := make([][]string, 0, len(nets))
	var total int64
	for _, n := range nets {
		total += n.Cost
		rows = append(rows, []string{
			n.Name,
			strconv.Itoa(n.Pins),
			n.MinLayer,
			strconv.Itoa(n.Segments),
			strconv.FormatInt(n.Cost, 10),
			fmt.Sprintf("r%d-%d c%d-%d", n.Region.BeginRow, n.Region.EndRow, n.Region.BeginCol, n.Region.EndCol),
		})
	}
	printTable([]string{"NET", "PINS", "MIN", "SEGS", "COST", "REGION"}, rows)
	printKeyValue("total cost", strconv.FormatInt(total, 10))
}
