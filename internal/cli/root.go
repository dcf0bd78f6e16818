// Package cli содержит команды feedctl.
package cli

import (
	"context"
	"errors"
	"feedloader/internal/config"
	"feedloader/internal/logger"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// options общие для всех подкоманд и заполняются в PersistentPreRunE.
type options struct {
	configPath  string
	verbose     bool
	metricsAddr string
	cfg         *config.Config
	log         *slog.Logger
	registry    *prometheus.Registry
}

// NewRootCommand собирает дерево команд feedctl.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "feedctl",
		Short: "Incremental feed loader",
		Long: `feedctl mounts the feed loading engine for feeds described in the config
and drives it from the command line.

Example usage:
  feedctl load --feed stories            # Load every page of one feed
  feedctl load --all --max-pages 3       # Load the first pages of all feeds
  feedctl load --feed stories --metrics  # Print engine metrics on exit
  feedctl warm --pages 2 --once          # Refresh cached pages of cache-first feeds
  feedctl warm --metrics-addr :9102      # Keep warming, expose /metrics
  feedctl seed --feed stories posts.json # Import posts for the page server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.json", "path to the JSON config")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while the command runs")

	root.AddCommand(newLoadCommand(opts), newWarmCommand(opts), newSeedCommand(opts))
	return root
}

func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if o.verbose {
		cfg.Logger.Level = "debug"
	}
	o.cfg = cfg
	o.registry = prometheus.NewRegistry()
	switch cfg.Logger.Output {
	case "", "stderr":
		level := logger.ParseLevel(cfg.Logger.Level)
		o.log = logger.NewWithWriters(cmd.ErrOrStderr(), cmd.ErrOrStderr(), level)
	default:
		o.log, err = logger.New(cfg.Logger)
		if err != nil {
			return fmt.Errorf("setup logger: %w", err)
		}
	}
	o.log.Debug("configuration loaded",
		slog.String("component", "cli"),
		slog.String("path", o.configPath),
		slog.Int("feeds", len(cfg.Feeds)),
		slog.String("cache_backend", cfg.Cache.Backend),
	)
	return nil
}

// serveMetrics поднимает /metrics на --metrics-addr и возвращает функцию остановки.
// Без флага ничего не запускается.
func (o *options) serveMetrics() (func(), error) {
	if o.metricsAddr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", o.metricsAddr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log := o.log.With(slog.String("component", "metrics"))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	log.Info("Metrics server ready", slog.String("address", ln.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Metrics server shutdown failed", slog.Any("error", err))
		}
	}, nil
}

// dumpMetrics пишет собранные метрики в текстовом формате Prometheus.
func (o *options) dumpMetrics(w io.Writer) error {
	families, err := o.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// selectFeeds переводит --feed / --all в конфигурации лент в порядке конфига.
func (o *options) selectFeeds(names []string, all bool) ([]config.FeedConfig, error) {
	if all {
		if len(o.cfg.Feeds) == 0 {
			return nil, fmt.Errorf("no feeds configured in %s", o.configPath)
		}
		return o.cfg.Feeds, nil
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("either --feed or --all is required")
	}
	feeds := make([]config.FeedConfig, 0, len(names))
	for _, name := range names {
		feed, ok := o.cfg.Feed(name)
		if !ok {
			return nil, fmt.Errorf("feed %q is not configured", name)
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
