package catalog

import (
	"strings"

	"anicat/internal/listing"
	"anicat/internal/metadata"
)

// Assemble merges listing detail and reconciled metadata into a write-ready
// record set. The raw listing title is kept verbatim as the catalog title;
// cleaning only ever applies to lookup queries. An episode count below one
// yields zero episodes, which is a valid terminal state for the item.
func Assemble(rawTitle string, detail listing.Detail, media *metadata.Media) Assembly {
	entry := Entry{
		Title: rawTitle,
	}
	if media != nil {
		entry.Description = media.Description
		entry.AnilistID = media.ID
		entry.Genre = optional(strings.Join(media.Genres, ", "))
		entry.TrailerURL = optional(media.TrailerURL())
		entry.ThumbnailURL = optional(media.CoverImage)
	}
	count := detail.Episodes
	if count < 1 {
		count = 0
	}
	return Assembly{Entry: entry, EpisodeCount: count}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
