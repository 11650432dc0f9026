package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/internal/config"
	"github.com/matzehuels/pipecheck/internal/server"
	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/history"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline analysis API",
		Long: `Serve runs the HTTP API that the visual editor talks to.

Backends for the report cache and run history come from a TOML config
file. Without --config the server uses built-in defaults: a file cache
under the user cache directory and a SQLite history database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("loaded config", "path", path)
	return cfg, nil
}

// runServe assembles the configured backends and runs the server until ctx
// is canceled.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	store, err := c.buildHistory(ctx, cfg)
	if err != nil {
		c.Logger.Warn("history disabled", "backend", cfg.History.Backend, "err", err)
		store = history.NewNullStore()
	}

	runner := pipeline.NewRunner(c.buildCache(cfg), buildKeyer(cfg), store, c.Logger)
	defer runner.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"history", cfg.History.Backend,
	)

	srv := server.New(cfg, runner, c.Logger)
	return srv.Start(ctx)
}

// buildCache creates the configured cache backend. Failures fall back to the
// null cache so the server still answers requests.
func (c *CLI) buildCache(cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache()

	case config.CacheRedis:
		return cache.NewRedisCache(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)

	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("cache disabled", "err", err)
				return cache.NewNullCache()
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// buildKeyer applies the configured cache scope, if any. Scoping lets
// several deployments share one redis without mixing their reports.
func buildKeyer(cfg *config.Config) cache.Keyer {
	if cfg.Cache.Scope == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, cfg.Cache.Scope)
}

// buildHistory creates the configured history backend.
func (c *CLI) buildHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryNone:
		return history.NewNullStore(), nil

	case config.HistoryMongo:
		m := cfg.History.Mongo
		return history.OpenMongo(ctx, m.URI, m.Database, m.Collection)

	default:
		path := cfg.History.Path
		if path == "" {
			p, err := historyPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return history.OpenSQLite(path)
	}
}
