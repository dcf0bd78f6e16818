package cli

import (
	"bytes"
	"errors"
	"feedloader/internal/app"
	"feedloader/internal/config"
	"feedloader/internal/render"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newLoadCommand(opts *options) *cobra.Command {
	var (
		feeds        []string
		all          bool
		maxPages     int
		templatePath string
		dumpMetrics  bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a feed page by page until it is exhausted",
		Long: `Mount the engine for the selected feeds and keep approaching the end of
the rendered content until each feed reaches a terminal state.

Rendered fragments go to stdout, progress and logs to stderr. With several
feeds the loads run concurrently and output is printed per feed in config order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := opts.selectFeeds(feeds, all)
			if err != nil {
				return err
			}
			tmpl := ""
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				tmpl = string(data)
			}
			renderer, err := render.NewTemplateRenderer(tmpl)
			if err != nil {
				return err
			}
			stopMetrics, err := opts.serveMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()
			loader, err := app.NewLoader(cmd.Context(), opts.cfg, opts.log, opts.registry)
			if err != nil {
				return err
			}
			defer loader.Close()
			loadErr := runLoad(cmd, loader, selected, maxPages, renderer)
			if dumpMetrics {
				if err := opts.dumpMetrics(cmd.ErrOrStderr()); err != nil {
					return errors.Join(loadErr, err)
				}
			}
			return loadErr
		},
	}
	cmd.Flags().StringSliceVarP(&feeds, "feed", "f", nil, "feed name from the config (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "load every configured feed")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages per feed (0 = until exhausted)")
	cmd.Flags().StringVar(&templatePath, "template", "", "html/template file used to render items")
	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print engine metrics to stderr on exit")
	return cmd
}

func runLoad(cmd *cobra.Command, loader *app.Loader, feeds []config.FeedConfig, maxPages int, renderer *render.TemplateRenderer) error {
	out := cmd.OutOrStdout()
	if len(feeds) == 1 {
		sink := render.NewWriterSink(out, cmd.ErrOrStderr())
		res, err := loader.Drain(cmd.Context(), feeds[0], maxPages, renderer, sink)
		if err != nil {
			return err
		}
		return errors.Join(sink.Err(), feedError(res))
	}

	buffers := make([]bytes.Buffer, len(feeds))
	results := make([]app.Result, len(feeds))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, feed := range feeds {
		g.Go(func() error {
			sink := render.NewWriterSink(&buffers[i], nil)
			res, err := loader.Drain(ctx, feed, maxPages, renderer, sink)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	var errs []error
	for i, feed := range feeds {
		fmt.Fprintf(out, "== %s ==\n", feed.Name)
		if _, err := io.Copy(out, &buffers[i]); err != nil {
			return err
		}
		errs = append(errs, feedError(results[i]))
	}
	return errors.Join(errs...)
}

// feedError сообщает о ленте, остановленной ошибкой загрузки.
func feedError(res app.Result) error {
	if res.Err == nil {
		return nil
	}
	return fmt.Errorf("feed %s stopped after %d pages: %w", res.Feed, res.Pages, res.Err)
}
