package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"anicat/internal/logging"
	"anicat/internal/services"
	"anicat/internal/supabase"
)

const (
	tableAnime   = "Anime"
	tableSeason  = "AnimeSeason"
	tableEpisode = "AnimeEpisode"
)

// Writer performs the dependency-ordered fan-out write for one assembly:
// parent entry, then its season, then each episode in ascending order. Child
// rows always reference the store-assigned id of the row before them; a
// failure aborts the remaining inserts for the item and leaves the committed
// rows in place.
type Writer struct {
	store  *supabase.Client
	newID  func() string
	logger *slog.Logger
}

// WriterOption customizes the writer.
type WriterOption func(*Writer)

// WithIDGenerator overrides payload id generation (useful for tests).
func WithIDGenerator(gen func() string) WriterOption {
	return func(w *Writer) {
		if gen != nil {
			w.newID = gen
		}
	}
}

// NewWriter creates a fan-out writer on top of the store client.
func NewWriter(store *supabase.Client, logger *slog.Logger, opts ...WriterOption) *Writer {
	writer := &Writer{
		store:  store,
		newID:  uuid.NewString,
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteResult reports the store-assigned identifiers of a completed write.
type WriteResult struct {
	EntryID  string
	SeasonID string
	Episodes int
}

// Write persists the assembly. On error the returned result reflects how far
// the fan-out progressed before the failing insert.
func (w *Writer) Write(ctx context.Context, asm Assembly) (WriteResult, error) {
	var result WriteResult

	entry := asm.Entry
	entry.ID = w.newID()
	entryRow, err := w.store.Insert(ctx, tableAnime, entry)
	if err != nil {
		return result, fmt.Errorf("write entry %q: %w", entry.Title, err)
	}
	result.EntryID = entryRow.ID()
	if result.EntryID == "" {
		return result, services.Wrap(services.ErrWrite, "catalog", "insert "+tableAnime, "representation missing id", nil)
	}

	season := Season{ID: w.newID(), AnimeID: result.EntryID, Season: 1}
	seasonRow, err := w.store.Insert(ctx, tableSeason, season)
	if err != nil {
		return result, fmt.Errorf("write season for %q: %w", entry.Title, err)
	}
	result.SeasonID = seasonRow.ID()
	if result.SeasonID == "" {
		return result, services.Wrap(services.ErrWrite, "catalog", "insert "+tableSeason, "representation missing id", nil)
	}

	for number := 1; number <= asm.EpisodeCount; number++ {
		episode := Episode{
			ID:       w.newID(),
			SeasonID: result.SeasonID,
			AnimeID:  result.EntryID,
			Episode:  number,
		}
		if _, err := w.store.Insert(ctx, tableEpisode, episode); err != nil {
			return result, fmt.Errorf("write episode %d for %q: %w", number, entry.Title, err)
		}
		result.Episodes = number
	}

	w.logger.Debug("fan-out write complete",
		logging.String("entry_id", result.EntryID),
		logging.Int("episodes", result.Episodes),
	)
	return result, nil
}
