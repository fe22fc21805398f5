package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"anicat/internal/catalog"
	"anicat/internal/dedup"
	"anicat/internal/journal"
	"anicat/internal/listing"
	"anicat/internal/logging"
	"anicat/internal/metadata"
	"anicat/internal/services"
)

// Lister provides the paginated catalog index and per-item quick info.
type Lister interface {
	Page(ctx context.Context, page int) ([]listing.Item, error)
	QuickInfo(ctx context.Context, itemID string) (listing.Detail, error)
}

// Enricher resolves a raw catalog title to external metadata.
type Enricher interface {
	Lookup(ctx context.Context, rawTitle string) (*metadata.Media, error)
}

// Storer persists one assembled catalog entry with its season and episodes.
type Storer interface {
	Write(ctx context.Context, asm catalog.Assembly) (catalog.WriteResult, error)
}

// Recorder journals per-title outcomes and run boundaries. May be nil.
type Recorder interface {
	BeginRun(ctx context.Context) (int64, error)
	RecordEntry(ctx context.Context, runID int64, title string, outcome journal.Outcome, detail string) error
	FinishRun(ctx context.Context, runID int64, status string, stats journal.RunStats) error
}

// Summary reports what a run accomplished.
type Summary struct {
	Pages      int
	Items      int
	Inserted   int
	Duplicates int
	NoMatch    int
	Failed     int
}

// Runner walks the listing pages and processes every title on them.
type Runner struct {
	lister   Lister
	enricher Enricher
	storer   Storer
	seen     *dedup.Set
	recorder Recorder
	logger   *slog.Logger

	startPage int
	delayMin  time.Duration
	delayMax  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option customizes the runner.
type Option func(*Runner)

// WithStartPage sets the first listing page to fetch.
func WithStartPage(page int) Option {
	return func(r *Runner) {
		if page > 0 {
			r.startPage = page
		}
	}
}

// WithItemDelay bounds the courtesy pause after each stored title.
func WithItemDelay(min, max time.Duration) Option {
	return func(r *Runner) {
		if min >= 0 && max >= min {
			r.delayMin = min
			r.delayMax = max
		}
	}
}

// WithRecorder attaches a run journal.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithSleepFunc overrides the pause implementation.
func WithSleepFunc(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// New creates a runner over the given collaborators.
func New(lister Lister, enricher Enricher, storer Storer, seen *dedup.Set, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		lister:    lister,
		enricher:  enricher,
		storer:    storer,
		seen:      seen,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		startPage: 1,
		delayMin:  500 * time.Millisecond,
		delayMax:  1500 * time.Millisecond,
		sleep:     sleepContext,
	}
	if runner.seen == nil {
		runner.seen = dedup.NewSet()
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run crawls pages from the start page until an empty page, processing every
// title. A page fetch failure aborts the run; title failures are counted and
// skipped. The returned summary reflects whatever completed before any abort.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	var runID int64
	if r.recorder != nil {
		id, err := r.recorder.BeginRun(ctx)
		if err != nil {
			return summary, fmt.Errorf("begin run: %w", err)
		}
		runID = id
	}

	runErr := r.crawl(ctx, runID, &summary)

	if r.recorder != nil {
		status := journal.StatusCompleted
		if runErr != nil {
			status = journal.StatusFailed
		}
		stats := journal.RunStats{
			Pages:      summary.Pages,
			Items:      summary.Items,
			Inserted:   summary.Inserted,
			Duplicates: summary.Duplicates,
			NoMatch:    summary.NoMatch,
			Failed:     summary.Failed,
		}
		// The run context may already be canceled when an interrupt ended the
		// crawl; the close-out write must still land or the run row would stay
		// "running" forever.
		if err := r.recorder.FinishRun(context.WithoutCancel(ctx), runID, status, stats); err != nil {
			r.logger.Warn("finish run journal entry", logging.Error(err))
		}
	}
	return summary, runErr
}

func (r *Runner) crawl(ctx context.Context, runID int64, summary *Summary) error {
	for page := r.startPage; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageCtx := services.WithPage(ctx, page)
		items, err := r.lister.Page(pageCtx, page)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(items) == 0 {
			r.logger.InfoContext(pageCtx, "listing exhausted", logging.Int("page", page))
			return nil
		}

		summary.Pages++
		r.logger.InfoContext(pageCtx, "processing page",
			logging.Int("page", page),
			logging.Int("items", len(items)),
		)

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary.Items++
			r.processItem(pageCtx, runID, item, summary)
		}
	}
}

func (r *Runner) processItem(ctx context.Context, runID int64, item listing.Item, summary *Summary) {
	ctx = services.WithItemID(services.WithTitle(ctx, item.Name), item.ID)
	log := r.logger.With(logging.Args(logging.ContextFields(ctx)...)...)

	if !r.seen.MarkIfNew(item.Name) {
		summary.Duplicates++
		log.Debug("skipping duplicate title")
		r.record(ctx, runID, item.Name, journal.OutcomeDuplicate, "")
		return
	}

	detail, err := r.lister.QuickInfo(ctx, item.ID)
	if err != nil {
		summary.Failed++
		log.Error("quick info fetch failed", logging.Error(err))
		r.record(ctx, runID, item.Name, journal.OutcomeFailed, err.Error())
		return
	}

	media, err := r.enricher.Lookup(ctx, item.Name)
	if err != nil {
		summary.Failed++
		log.Error("metadata lookup failed", logging.Error(err))
		r.record(ctx, runID, item.Name, journal.OutcomeFailed, err.Error())
		return
	}
	if media == nil {
		summary.NoMatch++
		log.Warn("no metadata match")
		r.record(ctx, runID, item.Name, journal.OutcomeNoMatch, "")
		return
	}

	asm := catalog.Assemble(item.Name, detail, media)
	result, err := r.storer.Write(ctx, asm)
	if err != nil {
		summary.Failed++
		attrs := []logging.Attr{
			logging.Error(err),
			logging.String("entry_id", result.EntryID),
			logging.Int("episodes_written", result.Episodes),
		}
		if services.IsItemScoped(err) {
			log.Warn("store write failed", logging.Args(attrs...)...)
		} else {
			log.Error("store write failed", logging.Args(attrs...)...)
		}
		r.record(ctx, runID, item.Name, journal.OutcomeFailed, err.Error())
		return
	}

	summary.Inserted++
	log.Info("title stored",
		logging.String("entry_id", result.EntryID),
		logging.Int("episodes", result.Episodes),
	)
	r.record(ctx, runID, item.Name, journal.OutcomeInserted, result.EntryID)

	if err := r.sleep(ctx, r.itemDelay()); err != nil {
		log.Debug("item pause interrupted", logging.Error(err))
	}
}

func (r *Runner) record(ctx context.Context, runID int64, title string, outcome journal.Outcome, detail string) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordEntry(ctx, runID, title, outcome, detail); err != nil {
		r.logger.Warn("journal entry failed",
			logging.String("title", title),
			logging.Error(err),
		)
	}
}

func (r *Runner) itemDelay() time.Duration {
	if r.delayMax <= r.delayMin {
		return r.delayMin
	}
	return r.delayMin + time.Duration(rand.Int63n(int64(r.delayMax-r.delayMin)))
}
