// Command satctl queries and maintains the satellite cache from a terminal.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mariavieira99/Satellites/internal/config"
	"github.com/mariavieira99/Satellites/internal/connectivity"
	"github.com/mariavieira99/Satellites/internal/query"
	"github.com/mariavieira99/Satellites/internal/remote"
	"github.com/mariavieira99/Satellites/internal/store"
)

// options are the persistent flags shared by every command.
type options struct {
	dbPath  string
	offline bool
	verbose bool
	asJSON  bool
}

// app is the wiring for one command invocation.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	cache  *store.Store
	out    io.Writer
}

func (o *options) open(cmd *cobra.Command) (*app, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(logger)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}

	cache, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, cache: cache, out: cmd.OutOrStdout()}, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}

// signal takes one synchronous reading of the network path, unless offline
// mode forces the cache.
func (a *app) signal(ctx context.Context, offline bool) connectivity.Signal {
	if offline {
		return connectivity.Static(false)
	}
	prober, err := connectivity.NewHTTPProber(a.cfg.APIBaseURL, a.cfg.ProbeTimeout)
	if err != nil {
		a.logger.Warn("invalid API base URL, using cache", "url", a.cfg.APIBaseURL, "error", err)
		return connectivity.Static(false)
	}
	obs := prober.Probe(ctx)
	return connectivity.Static(obs.Reachable && obs.Validated)
}

func (a *app) executor(ctx context.Context, offline bool) *query.Executor {
	client := remote.NewClient(a.cfg.APIBaseURL, a.cfg.RemoteTimeout, a.logger)
	return query.NewExecutor(client, a.cache, a.signal(ctx, offline), a.logger)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "satctl",
		Short: "Query satellite element sets and manage the local cache",
		Long: `satctl queries the public TLE API, falling back to the local SQLite cache
when the API is unreachable. Results fetched from the API are cached for
offline use.

Configuration is read from the file named by SATELLITES_CONFIG and from
SATELLITES_* environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "cache database path (overrides SATELLITES_DB_PATH)")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "read from the local cache only")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newGetCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newCacheCmd(opts))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
