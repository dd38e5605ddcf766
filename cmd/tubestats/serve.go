package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/voyagen/tubestats/internal/cache"
	"github.com/voyagen/tubestats/internal/config"
	"github.com/voyagen/tubestats/internal/metrics"
	"github.com/voyagen/tubestats/internal/server"
	"github.com/voyagen/tubestats/internal/service"
	"github.com/voyagen/tubestats/internal/store"
	"github.com/voyagen/tubestats/internal/watcher"
)

// Serve-specific flag values.
var (
	servePort  string
	serveWatch bool
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dashboards over HTTP",
	Long: `Load the channel table and serve dashboards over HTTP until interrupted.
The table must load at startup; a source that cannot be read is fatal.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from SERVER_PORT or 8080)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload when the data file changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.ServerPort = servePort
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = serveWatch
	}
	if err := cfg.Validate(); err != nil {
		return exitError(ExitInvalidArgs, "config: %v", err)
	}
	log, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	src, closeSrc, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	tables := store.NewTableCache(src, store.WithLogger(log), store.WithMetrics(m), store.WithLoadTimeout(cfg.Timeout))
	if _, err := tables.Get(ctx); err != nil {
		return exitError(ExitFailure, "%v", err)
	}

	// Connect to Redis if REDIS_URL is configured.
	rds := connectRedis(ctx, cfg, log)
	if rds != nil {
		defer rds.Close()
	}

	var dashboards service.Dashboards = service.NewDashboardService(tables, cfg.TopN)
	if rds != nil {
		dashboards = service.NewCachedDashboards(service.NewDashboardService(tables, cfg.TopN), tables, rds, cfg.CacheTTL, log, m)
	}
	reloader := service.NewReloader(tables, rds, log)

	if cfg.Watch {
		startWatcher(ctx, log, src, reloader)
	}

	srv := server.New(cfg, server.Deps{
		Tables:     tables,
		Dashboards: dashboards,
		Reloader:   reloader,
		Logger:     log,
		Metrics:    m,
		Gatherer:   reg,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		return exitError(ExitFailure, "server: %v", err)
	}
	return nil
}

// connectRedis returns nil when Redis is not configured or unreachable;
// dashboards are then computed on every request.
func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) *cache.Redis {
	if cfg.RedisURL == "" {
		log.Info("redis disabled (REDIS_URL not set)")
		return nil
	}
	rds, err := cache.Connect(ctx, cfg.RedisURL, cfg.Timeout)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "error", err)
		return nil
	}
	log.Info("redis connected (caching enabled)")
	return rds
}

func startWatcher(ctx context.Context, log *slog.Logger, src store.Source, reloader *service.Reloader) {
	fs, ok := src.(*store.FileSource)
	if !ok || fs.Path() == "" {
		log.Warn("watch ignored: only local files can be watched", "source", src.Info().String())
		return
	}
	go func() {
		err := watcher.Watch(ctx, log, fs.Path(), watcher.DefaultDebounce, func(ctx context.Context) {
			if _, err := reloader.Reload(ctx); err != nil {
				log.Error("reload after file change", "error", err)
			}
		})
		if err != nil {
			log.Error("file watcher stopped", "error", err)
		}
	}()
}
