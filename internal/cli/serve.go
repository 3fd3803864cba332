package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellroute/internal/server"
	"github.com/matzehuels/cellroute/pkg/cache"
	"github.com/matzehuels/cellroute/pkg/pipeline"
)

// serviceScope prefixes service cache keys.
const serviceScope = "svc:"

// serveCommand creates the serve command running the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routing API over HTTP",
		Long: `Serve the routing API over HTTP.

POST a design file to /v1/route for a full sweep or to /v1/nets/{net}/route
for a single net. Results are cached in Redis when cache.redis_addr is
configured, in the local cache directory otherwise.`,
		Example: `  cellroute serve --addr :8080
  curl --data-binary @design.json 'localhost:8080/v1/route?formats=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			backend, err := newCache(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), serviceScope)
			runner := pipeline.NewRunner(cache.NewInstrumented(backend), keyer, logger)
			defer runner.Close()

			printSuccess("Serving on %s", cfg.Server.Addr)
			printKeyValue("solver", cfg.Solver)
			printKeyValue("cache", cacheLabel(cfg.Cache.RedisAddr, noCache))

			err = server.New(runner, cfg, logger).ListenAndServe(ctx, cfg.Server.Addr)
			if errors.Is(err, context.Canceled) {
				printInfo("Server stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func cacheLabel(redisAddr string, noCache bool) string {
	switch {
	case noCache:
		return "disabled"
	case redisAddr != "":
		return "redis " + redisAddr
	}
	return "local"
}
