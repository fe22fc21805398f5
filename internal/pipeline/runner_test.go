package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"anicat/internal/catalog"
	"anicat/internal/dedup"
	"anicat/internal/journal"
	"anicat/internal/listing"
	"anicat/internal/logging"
	"anicat/internal/metadata"
)

type fakeLister struct {
	pages      map[int][]listing.Item
	pageErr    map[int]error
	details    map[string]listing.Detail
	detailErr  map[string]error
	quickCalls []string
}

func (f *fakeLister) Page(_ context.Context, page int) ([]listing.Item, error) {
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeLister) QuickInfo(_ context.Context, itemID string) (listing.Detail, error) {
	f.quickCalls = append(f.quickCalls, itemID)
	if err := f.detailErr[itemID]; err != nil {
		return listing.Detail{}, err
	}
	return f.details[itemID], nil
}

type fakeEnricher struct {
	media     map[string]*metadata.Media
	lookupErr map[string]error
	lookups   []string
}

func (f *fakeEnricher) Lookup(_ context.Context, rawTitle string) (*metadata.Media, error) {
	f.lookups = append(f.lookups, rawTitle)
	if err := f.lookupErr[rawTitle]; err != nil {
		return nil, err
	}
	return f.media[rawTitle], nil
}

type fakeStorer struct {
	writeErr map[string]error
	written  []catalog.Assembly
}

func (f *fakeStorer) Write(_ context.Context, asm catalog.Assembly) (catalog.WriteResult, error) {
	f.written = append(f.written, asm)
	if err := f.writeErr[asm.Entry.Title]; err != nil {
		return catalog.WriteResult{}, err
	}
	return catalog.WriteResult{EntryID: "srv-" + asm.Entry.Title, SeasonID: "season", Episodes: asm.EpisodeCount}, nil
}

type recordedEntry struct {
	title   string
	outcome journal.Outcome
	detail  string
}

type fakeRecorder struct {
	entries  []recordedEntry
	status   string
	stats    journal.RunStats
	finished bool
}

func (f *fakeRecorder) BeginRun(context.Context) (int64, error) { return 7, nil }

func (f *fakeRecorder) RecordEntry(_ context.Context, runID int64, title string, outcome journal.Outcome, detail string) error {
	if runID != 7 {
		return errors.New("unexpected run id")
	}
	f.entries = append(f.entries, recordedEntry{title: title, outcome: outcome, detail: detail})
	return nil
}

func (f *fakeRecorder) FinishRun(_ context.Context, _ int64, status string, stats journal.RunStats) error {
	f.finished = true
	f.status = status
	f.stats = stats
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func mediaFor(id int) *metadata.Media {
	return &metadata.Media{ID: id, Genres: []string{"Action"}}
}

func TestRunHappyPath(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {{ID: "a1", Name: "Naruto"}, {ID: "a2", Name: "Bleach"}},
			2: {{ID: "a3", Name: "Frieren"}},
		},
		details: map[string]listing.Detail{
			"a1": {Episodes: 2}, "a2": {Episodes: 1}, "a3": {Episodes: 3},
		},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{
		"Naruto": mediaFor(1), "Bleach": mediaFor(2), "Frieren": mediaFor(3),
	}}
	storer := &fakeStorer{}

	runner := New(lister, enricher, storer, dedup.NewSet(), logging.NewNop(), WithSleepFunc(noSleep))
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Summary{Pages: 2, Items: 3, Inserted: 3}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	if len(storer.written) != 3 {
		t.Fatalf("writes = %d, want 3", len(storer.written))
	}
	if storer.written[0].Entry.Title != "Naruto" || storer.written[2].Entry.Title != "Frieren" {
		t.Fatalf("unexpected write order: %+v", storer.written)
	}
}

func TestRunSkipsDuplicateTitles(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {{ID: "a1", Name: "Naruto"}, {ID: "a2", Name: "Naruto"}},
		},
		details: map[string]listing.Detail{"a1": {Episodes: 1}},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Naruto": mediaFor(1)}}
	storer := &fakeStorer{}

	runner := New(lister, enricher, storer, dedup.NewSet(), logging.NewNop(), WithSleepFunc(noSleep))
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Inserted != 1 || summary.Duplicates != 1 {
		t.Fatalf("summary = %+v, want 1 inserted 1 duplicate", summary)
	}
	// The duplicate never reaches the quick-info fetch.
	if len(lister.quickCalls) != 1 {
		t.Fatalf("quick info calls = %v, want only a1", lister.quickCalls)
	}
}

func TestRunSeededTitlesAreDuplicates(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{1: {{ID: "a1", Name: "Naruto"}}},
	}
	seen := dedup.NewSet()
	seen.Seed([]string{"Naruto"})

	runner := New(lister, &fakeEnricher{}, &fakeStorer{}, seen, logging.NewNop(), WithSleepFunc(noSleep))
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Duplicates != 1 || summary.Inserted != 0 {
		t.Fatalf("summary = %+v, want seeded title skipped", summary)
	}
}

func TestRunNoMatchAndFailuresAreIsolated(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {
				{ID: "a1", Name: "Unknown Show"},
				{ID: "a2", Name: "Broken Fetch"},
				{ID: "a3", Name: "Write Fails"},
				{ID: "a4", Name: "Good Show"},
			},
		},
		details: map[string]listing.Detail{
			"a1": {Episodes: 1}, "a3": {Episodes: 1}, "a4": {Episodes: 1},
		},
		detailErr: map[string]error{"a2": errors.New("exhausted retries")},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{
		"Write Fails": mediaFor(3), "Good Show": mediaFor(4),
	}}
	storer := &fakeStorer{writeErr: map[string]error{"Write Fails": errors.New("status 500")}}
	recorder := &fakeRecorder{}

	runner := New(lister, enricher, storer, dedup.NewSet(), logging.NewNop(),
		WithSleepFunc(noSleep), WithRecorder(recorder))
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("item failures must not abort the run: %v", err)
	}

	want := Summary{Pages: 1, Items: 4, Inserted: 1, NoMatch: 1, Failed: 2}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}

	outcomes := map[string]journal.Outcome{}
	for _, entry := range recorder.entries {
		outcomes[entry.title] = entry.outcome
	}
	if outcomes["Unknown Show"] != journal.OutcomeNoMatch {
		t.Fatalf("Unknown Show outcome = %s", outcomes["Unknown Show"])
	}
	if outcomes["Broken Fetch"] != journal.OutcomeFailed || outcomes["Write Fails"] != journal.OutcomeFailed {
		t.Fatalf("failure outcomes = %+v", outcomes)
	}
	if outcomes["Good Show"] != journal.OutcomeInserted {
		t.Fatalf("Good Show outcome = %s", outcomes["Good Show"])
	}
	if !recorder.finished || recorder.status != journal.StatusCompleted {
		t.Fatalf("run should finish completed, got %+v", recorder)
	}
	if recorder.stats.Failed != 2 {
		t.Fatalf("recorded stats = %+v", recorder.stats)
	}
}

func TestRunPageFailureIsFatal(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {{ID: "a1", Name: "Naruto"}},
		},
		details: map[string]listing.Detail{"a1": {Episodes: 1}},
		pageErr: map[int]error{2: errors.New("exhausted retries")},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Naruto": mediaFor(1)}}
	recorder := &fakeRecorder{}

	runner := New(lister, enricher, &fakeStorer{}, dedup.NewSet(), logging.NewNop(),
		WithSleepFunc(noSleep), WithRecorder(recorder))
	summary, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("page fetch exhaustion must abort the run")
	}
	if summary.Pages != 1 || summary.Inserted != 1 {
		t.Fatalf("summary = %+v, want work from page 1 preserved", summary)
	}
	if recorder.status != journal.StatusFailed {
		t.Fatalf("run status = %q, want failed", recorder.status)
	}
}

func TestRunStartPage(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {{ID: "a1", Name: "Skipped"}},
			3: {{ID: "a3", Name: "Naruto"}},
		},
		details: map[string]listing.Detail{"a3": {Episodes: 1}},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Naruto": mediaFor(1)}}
	storer := &fakeStorer{}

	runner := New(lister, enricher, storer, dedup.NewSet(), logging.NewNop(),
		WithSleepFunc(noSleep), WithStartPage(3))
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Inserted != 1 || len(storer.written) != 1 || storer.written[0].Entry.Title != "Naruto" {
		t.Fatalf("start page not honored: %+v", summary)
	}
}

func TestRunSleepsOnlyAfterStoredTitles(t *testing.T) {
	lister := &fakeLister{
		pages: map[int][]listing.Item{
			1: {{ID: "a1", Name: "No Match"}, {ID: "a2", Name: "Stored"}},
		},
		details: map[string]listing.Detail{"a1": {Episodes: 1}, "a2": {Episodes: 1}},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Stored": mediaFor(2)}}

	var pauses []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	runner := New(lister, enricher, &fakeStorer{}, dedup.NewSet(), logging.NewNop(),
		WithSleepFunc(sleep), WithItemDelay(500*time.Millisecond, 1500*time.Millisecond))
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pauses) != 1 {
		t.Fatalf("pauses = %v, want one pause after the stored title only", pauses)
	}
	if pauses[0] < 500*time.Millisecond || pauses[0] >= 1500*time.Millisecond {
		t.Fatalf("pause %v outside [500ms, 1500ms)", pauses[0])
	}
}

// ctxCheckingRecorder rejects finalization attempts made with a canceled
// context, the way a real database write would fail.
type ctxCheckingRecorder struct {
	fakeRecorder
}

func (r *ctxCheckingRecorder) FinishRun(ctx context.Context, runID int64, status string, stats journal.RunStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeRecorder.FinishRun(ctx, runID, status, stats)
}

func TestRunInterruptStillFinalizesJournal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lister := &fakeLister{
		pages:   map[int][]listing.Item{1: {{ID: "a1", Name: "Naruto"}}},
		details: map[string]listing.Detail{"a1": {Episodes: 1}},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Naruto": mediaFor(1)}}
	recorder := &ctxCheckingRecorder{}

	sleep := func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	runner := New(lister, enricher, &fakeStorer{}, dedup.NewSet(), logging.NewNop(),
		WithSleepFunc(sleep), WithRecorder(recorder))
	_, err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !recorder.finished {
		t.Fatal("interrupted run must still be closed out in the journal")
	}
	if recorder.status != journal.StatusFailed {
		t.Fatalf("run status = %q, want failed", recorder.status)
	}
	if recorder.stats.Inserted != 1 {
		t.Fatalf("recorded stats = %+v, want the stored title counted", recorder.stats)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lister := &fakeLister{
		pages:   map[int][]listing.Item{1: {{ID: "a1", Name: "Naruto"}}},
		details: map[string]listing.Detail{"a1": {Episodes: 1}},
	}
	enricher := &fakeEnricher{media: map[string]*metadata.Media{"Naruto": mediaFor(1)}}

	sleep := func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	runner := New(lister, enricher, &fakeStorer{}, dedup.NewSet(), logging.NewNop(), WithSleepFunc(sleep))
	_, err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
