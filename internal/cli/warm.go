package cli

import (
	"context"
	"feedloader/internal/app"
	"feedloader/internal/config"
	"feedloader/internal/engine"
	"feedloader/internal/worker"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWarmCommand(opts *options) *cobra.Command {
	var (
		pages    int
		interval time.Duration
		once     bool
	)
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Refresh cached pages of cache-first feeds",
		Long: `Re-fetch the first pages of every cache-first feed and overwrite their
cache entries. Without --once the refresh repeats every --interval until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages <= 0 {
				return fmt.Errorf("--pages must be positive")
			}
			if !once && interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			loader, err := app.NewLoader(cmd.Context(), opts.cfg, opts.log, opts.registry)
			if err != nil {
				return err
			}
			defer loader.Close()
			refresher, urls, err := warmTargets(loader, opts.cfg.Feeds, pages)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no cache-first feeds configured")
			}
			w := worker.New(refresher, urls, interval, opts.cfg.Engine.Timeout()+time.Second, opts.log)
			if once {
				if failed := w.RunOnce(cmd.Context()); failed > 0 {
					return fmt.Errorf("%d of %d pages failed to refresh", failed, len(urls))
				}
				return nil
			}
			stopMetrics, err := opts.serveMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := w.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			opts.log.Info("Shutdown signal received", slog.String("component", "cli"))
			w.Stop()
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of leading pages to refresh per feed")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Minute, "refresh interval")
	cmd.Flags().BoolVar(&once, "once", false, "refresh once and exit")
	return cmd
}

// feedRefresher направляет URL страницы прогревателю её ленты,
// чтобы каждая лента декодировалась со своим полем элементов.
type feedRefresher map[string]worker.PageRefresher

func (r feedRefresher) Refresh(ctx context.Context, url string) error {
	target, ok := r[url]
	if !ok {
		return fmt.Errorf("no refresher for %s", url)
	}
	return target.Refresh(ctx, url)
}

// warmTargets перечисляет первые pages страниц каждой cache-first ленты.
func warmTargets(loader *app.Loader, feeds []config.FeedConfig, pages int) (feedRefresher, []string, error) {
	refresher := make(feedRefresher)
	var urls []string
	for _, feed := range feeds {
		if !feed.CacheFirst {
			continue
		}
		r, err := loader.Refresher(feed)
		if err != nil {
			return nil, nil, err
		}
		start := max(feed.StartPage, 1)
		for n := start; n < start+pages; n++ {
			u := engine.PageURL(feed.URL, n, feed.CountField, feed.Total)
			refresher[u] = r
			urls = append(urls, u)
		}
	}
	return refresher, urls, nil
}
