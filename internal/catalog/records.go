package catalog

// Entry is the canonical parent record for one unique title. The ID sent in
// the payload is advisory; the store-assigned id returned on insert is the
// identity that child records reference.
type Entry struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AnilistID    int     `json:"anilistId"`
	Genre        *string `json:"genre"`
	TrailerURL   *string `json:"trailerUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// Season is the single season record created per entry.
type Season struct {
	ID      string `json:"id"`
	AnimeID string `json:"animeId"`
	Season  int    `json:"season"`
}

// Episode is one numbered episode within a season.
type Episode struct {
	ID       string `json:"id"`
	SeasonID string `json:"seasonId"`
	AnimeID  string `json:"animeId"`
	Episode  int    `json:"episode"`
}

// Assembly is the merged, write-ready form of one listing item.
type Assembly struct {
	Entry        Entry
	EpisodeCount int
}
