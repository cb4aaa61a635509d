package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/config"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/rename"
	"github.com/matzehuels/floorplan/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform over HTTP",
		Long: `Serve the transform as a JSON API.

  POST /v1/transform  {"svg": "...", "renames": {"opt1": "Storage"}}
  POST /v1/inspect    {"svg": "..."}
  GET  /healthz

Options without a rename keep their id; the server never prompts. Results
are cached in the backend chosen by server.cache (none, file or redis).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := c.settings()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if backend != "" {
				cfg.Server.Cache = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			policy, err := rename.ParsePolicy(cfg.Rename.Policy)
			if err != nil {
				return err
			}

			store, err := c.openCache(ctx, cfg.Server)
			if err != nil {
				return err
			}
			defer store.Close()

			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Server.KeyPrefix)
			runner := pipeline.NewRunner(store, keyer, logger)
			if cfg.Server.CacheTTL > 0 {
				runner.CacheTTL = cfg.Server.CacheTTL
			}

			srv := server.New(server.Options{
				Runner:       runner,
				Rules:        cfg.Rules,
				Policy:       policy,
				Logger:       logger,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
			})
			return srv.ListenAndServe(ctx, cfg.Server.Addr, func(a net.Addr) {
				printSuccess("Listening on http://%s", a)
				printDetail("cache: %s", cfg.Server.Cache)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: none, file or redis (overrides server.cache)")
	return cmd
}

// openCache builds the configured cache backend.
func (c *CLI) openCache(ctx context.Context, cfg config.Server) (cache.Cache, error) {
	switch cfg.Cache {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		dir, err := cacheDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "cache directory")
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		var rc *cache.RedisCache
		err := newSpinner(ctx, "Connecting to Redis...").Run(func() error {
			var err error
			rc, err = cache.NewRedisCache(ctx, cfg.RedisURL)
			return err
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Cache)
}
