package main

import (
	"context"
	"fmt"
	"github.com/TokDenis/folio/config"
	"github.com/TokDenis/folio/services"
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"
)

var (
	configPath string
	cfg        config.Config
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Portfolio blog backend: posts, view counts, sitemap",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			return setupLogger(cfg.Log)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(serveCmd(), sitemapCmd(), viewsCmd())

	return root
}

func setupLogger(lc config.LogConfig) error {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if lc.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the views API, post listings, sitemap and assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	store, err := services.OpenViewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	content, err := services.NewContent(cfg.ContentDir)
	if err != nil {
		return err
	}

	stats := services.NewStats(store, cfg.FlushInterval)

	g, ctx := errgroup.WithContext(ctx)

	// listings use the remote counter when one is configured
	var views services.ViewsSource
	if cfg.Views.URL != "" {
		client := services.NewViewsClient(nil, cfg.Views.URL, cfg.Views.RetryCount, cfg.Views.Timeout)
		poller := services.NewViewsPoller(client, cfg.Views.RefreshInterval)
		views = poller
		g.Go(func() error { return poller.Run(ctx) })
	}

	api := services.NewApi(cfg, content, stats, views)
	g.Go(func() error { return api.ListenAndServe(ctx) })

	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cerr := stats.Close(closeCtx); cerr != nil {
		log.Error().Err(cerr).Msg("flush views on shutdown")
	}

	return err
}

func sitemapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml for the content directory to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := services.NewContent(cfg.ContentDir)
			if err != nil {
				return err
			}

			set := services.Sitemap(cfg.BaseURL, content.Posts(false), content.Posts(true), time.Now())
			return services.WriteSitemap(cmd.OutOrStdout(), set)
		},
	}
}

func viewsCmd() *cobra.Command {
	var key, dir, category string
	var archived bool

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Print the post table merged with views from the views service",
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := sorting.ParseSortSetting(key, dir)
			if err != nil {
				return err
			}

			content, err := services.NewContent(cfg.ContentDir)
			if err != nil {
				return err
			}

			url := cfg.Views.URL
			if url == "" {
				url = cfg.BaseURL
			}
			client := services.NewViewsClient(nil, url, cfg.Views.RetryCount, cfg.Views.Timeout)

			views, err := client.FetchAll(cmd.Context(), archived)
			if err != nil {
				log.Error().Err(err).Msg("fetch views, showing zero")
			}

			listing := services.BuildListing(content.Posts(archived), views, false, sort, category)
			return printListing(cmd.OutOrStdout(), listing)
		},
	}

	cmd.Flags().StringVar(&key, "key", "date", "sort key: date or views")
	cmd.Flags().StringVar(&dir, "dir", "desc", "sort direction: asc or desc")
	cmd.Flags().StringVar(&category, "category", sorting.CategoryAll, "only posts in this category")
	cmd.Flags().BoolVar(&archived, "archive", false, "list archived posts")

	return cmd
}

func printListing(w io.Writer, l types.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\tdate%s\ttitle\tviews%s\n", l.Header.DateIndicator, l.Header.ViewsIndicator)
	for _, p := range l.Posts {
		year := ""
		if p.FirstOfYear && p.Year != 0 {
			year = fmt.Sprint(p.Year)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", year, p.PublishedAt, strings.TrimSpace(p.Title), p.ViewsFormatted)
	}

	return tw.Flush()
}
