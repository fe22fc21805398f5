package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"anicat/internal/catalog"
	"anicat/internal/config"
	"anicat/internal/dedup"
	"anicat/internal/fetch"
	"anicat/internal/journal"
	"anicat/internal/listing"
	"anicat/internal/logging"
	"anicat/internal/metadata"
	"anicat/internal/pipeline"
	"anicat/internal/supabase"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var startPage int
	var noResume bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Crawl the listing and store enriched titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSync(runCtx, cmd, cfg, startPage, noResume)
		},
	}

	cmd.Flags().IntVar(&startPage, "start-page", 0, "Override the first listing page")
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "Ignore journal history and revisit every title")
	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, cfg *config.Config, startPage int, noResume bool) error {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another sync is already running (lock held at %s)", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	listFetcher := fetch.New(fetch.Config{
		Attempts:  uint(cfg.Pipeline.RetryAttempts),
		Delay:     time.Duration(cfg.Pipeline.RetryDelaySeconds) * time.Second,
		MaxJitter: time.Duration(cfg.Pipeline.RetryJitterSeconds) * time.Second,
		Timeout:   time.Duration(cfg.Listing.TimeoutSeconds) * time.Second,
	}, fetch.WithLogger(logger))
	metaFetcher := fetch.New(fetch.Config{
		Attempts:  uint(cfg.Pipeline.RetryAttempts),
		Delay:     time.Duration(cfg.Pipeline.RetryDelaySeconds) * time.Second,
		MaxJitter: time.Duration(cfg.Pipeline.RetryJitterSeconds) * time.Second,
		Timeout:   time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
	}, fetch.WithLogger(logger))

	lister, err := listing.New(cfg.Listing.BaseURL, cfg.Listing.Sort, listFetcher, logger)
	if err != nil {
		return fmt.Errorf("build listing client: %w", err)
	}
	enricher, err := metadata.New(cfg.Metadata.URL, metaFetcher, logger)
	if err != nil {
		return fmt.Errorf("build metadata client: %w", err)
	}
	restStore, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey, logger,
		supabase.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Supabase.TimeoutSeconds) * time.Second}))
	if err != nil {
		return fmt.Errorf("build store client: %w", err)
	}
	writer := catalog.NewWriter(restStore, logger)

	seen := dedup.NewSet()
	if cfg.Pipeline.Resume && !noResume {
		titles, err := store.IngestedTitles(ctx)
		if err != nil {
			return fmt.Errorf("load resume history: %w", err)
		}
		seen.Seed(titles)
		logger.Info("resuming past stored titles", logging.Int("titles", len(titles)))
	}

	page := cfg.Pipeline.StartPage
	if startPage > 0 {
		page = startPage
	}

	runner := pipeline.New(lister, enricher, writer, seen, logger,
		pipeline.WithStartPage(page),
		pipeline.WithItemDelay(
			time.Duration(cfg.Pipeline.ItemDelayMinMillis)*time.Millisecond,
			time.Duration(cfg.Pipeline.ItemDelayMaxMillis)*time.Millisecond,
		),
		pipeline.WithRecorder(store),
	)

	summary, runErr := runner.Run(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	return runErr
}

func renderSummary(summary pipeline.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Pages", "Items", "Inserted", "Duplicates", "No Match", "Failed"})
	tw.AppendRow(table.Row{
		summary.Pages,
		summary.Items,
		summary.Inserted,
		summary.Duplicates,
		summary.NoMatch,
		summary.Failed,
	})
	tw.SetColumnConfigs(rightAlignedColumns(1, 6))
	return tw.Render()
}

// rightAlignedColumns right-aligns the inclusive 1-based column range; counts
// read better flush against each other.
func rightAlignedColumns(from, to int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, to-from+1)
	for number := from; number <= to; number++ {
		configs = append(configs, table.ColumnConfig{Number: number, Align: text.AlignRight})
	}
	return configs
}
