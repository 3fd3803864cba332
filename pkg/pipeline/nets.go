package pipeline

import (
	"github.com/matzehuels/cellroute/pkg/config"
	"github.com/matzehuels/cellroute/pkg/design"
	"github.com/matzehuels/cellroute/pkg/grid"
	"github.com/matzehuels/cellroute/pkg/router"
)

// NetSummary describes one net of a design.
type NetSummary struct {
	Name     string        `json:"name"`
	Pins     int           `json:"pins"`
	MinLayer string        `json:"min_layer"`
	Segments int           `json:"segments"`
	Cost     int64         `json:"cost"`
	Region   router.Region `json:"region"`
}

// Summarize reports every net of d in name order. The region strategy and
// margin come from cfg (cfg.Region and the row/column padding) and costs use
// the configured layer factors; cfg must have defaults set.
func Summarize(d *design.Design, cfg config.Config) ([]NetSummary, error) {
	factors, _, err := cfg.LayerParams(d)
	if err != nil {
		return nil, err
	}
	store := grid.New(d, grid.WithFactors(factors))
	calc := router.NewRegionCalculator(cfg.Region, store, cfg.PaddingValue().RowCol)

	routes := store.NetRoutes()
	nets := store.Nets()
	out := make([]NetSummary, 0, len(nets))
	for _, n := range nets {
		nr := routes[n]
		out = append(out, NetSummary{
			Name:     n.Name,
			Pins:     len(n.Pins),
			MinLayer: n.MinRoutingLayer.Name,
			Segments: len(nr.Segments),
			Cost:     nr.Cost,
			Region:   calc.Region(n),
		})
	}
	return out, nil
}
