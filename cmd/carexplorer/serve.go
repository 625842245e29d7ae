package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/WessleyAI/car-explorer/engine/api"
	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/prefs"
	"github.com/WessleyAI/car-explorer/internal/config"
	"github.com/WessleyAI/car-explorer/pkg/metrics"
	"github.com/WessleyAI/car-explorer/pkg/mid"
	"github.com/WessleyAI/car-explorer/pkg/resilience"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen port")
	_ = viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := serve(cmd.Context(), cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		return err
	}
	return nil
}

func serve(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "catalog", a.holder.Current().Source())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// app is the wired server: catalog, reload triggers, preference storage and
// the HTTP handler chain. Background work stops when the context passed to
// newApp is done; Close releases connections.
type app struct {
	handler  http.Handler
	holder   *catalog.Holder
	reloader *catalog.Reloader
	metrics  *metrics.Registry
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{holder: catalog.NewHolder(nil), metrics: metrics.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// --- Catalog ---
	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, release)

	a.reloader = catalog.NewReloader(a.holder, src, logger,
		catalog.WithReloadLimit(resilience.NewLimiter(resilience.LimiterOpts{Rate: 1, Burst: 3})),
		catalog.WithReloadMetrics(a.metrics),
	)
	if err := a.reloader.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial catalog load: %w", err)
	}

	if cfg.Catalog.Watch {
		w, err := catalog.NewWatcher(cfg.Catalog.Path, a.reloader.Reload, logger)
		if err != nil {
			return nil, err
		}
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, w.Stop)
	}

	// --- NATS ---
	prefsOpts := []prefs.Option{prefs.WithCapacity(cfg.Prefs.Capacity)}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("carexplorer"))
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		a.closers = append(a.closers, nc.Close)

		sub, err := catalog.SubscribeReload(nc, a.reloader, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = sub.Unsubscribe() })
		prefsOpts = append(prefsOpts, prefs.WithNotifier(prefs.NewNATSNotifier(nc, logger)))
	}

	// --- Preferences ---
	var kv prefs.KV = prefs.NewMemoryKV()
	if cfg.Prefs.Backend == config.BackendRedis {
		client, err := prefs.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })
		kv = prefs.NewRedisKV(client, cfg.Prefs.TTL)
	}

	// --- HTTP ---
	limiter := resilience.NewKeyedLimiter(resilience.LimiterOpts{Rate: cfg.Rate.Limit, Burst: cfg.Rate.Burst}, 10*time.Minute)
	if limiter.Enabled() {
		go limiter.Run(ctx, time.Minute)
	}

	srv := api.New(api.Deps{
		Catalog:      a.holder,
		KV:           kv,
		PrefsOptions: prefsOpts,
		Metrics:      a.metrics,
		Logger:       logger,
	})
	srv.Mount("GET /metrics", a.metrics.Handler())

	a.handler = mid.Chain(srv.Handler(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("carexplorer"),
		mid.RateLimit(limiter),
		mid.Metrics(a.metrics),
	)
	return a, nil
}
