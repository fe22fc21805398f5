package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"anicat/internal/fetch"
	"anicat/internal/logging"
	"anicat/internal/services"
)

// Item is a single raw entry from a crawl page.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Detail carries the secondary attributes fetched per item. Episodes is the
// authoritative subbed-episode count, zero when the source reports none.
type Detail struct {
	Episodes int
}

// Client crawls a hianime-compatible listing API.
type Client struct {
	baseURL string
	sort    string
	fetcher *fetch.Client
	logger  *slog.Logger
}

// New creates a listing client. The sort mode is fixed for the client's
// lifetime so pagination stays consistent across the run.
func New(baseURL, sort string, fetcher *fetch.Client, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "listing", "new", "base url required", nil)
	}
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return nil, services.Wrap(services.ErrConfiguration, "listing", "new", "sort mode required", nil)
	}
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "listing", "new", "fetch client required", nil)
	}
	return &Client{
		baseURL: baseURL,
		sort:    sort,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "listing"),
	}, nil
}

type azListResponse struct {
	Data struct {
		Animes []Item `json:"animes"`
	} `json:"data"`
}

type quickInfoResponse struct {
	Data struct {
		Anime struct {
			Episodes struct {
				Sub int `json:"sub"`
			} `json:"episodes"`
		} `json:"anime"`
	} `json:"data"`
}

// Page fetches one listing page. An empty slice is the authoritative
// end-of-data signal; callers must stop paginating when they receive one.
func (c *Client) Page(ctx context.Context, page int) ([]Item, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	endpoint := fmt.Sprintf("%s/api/v2/hianime/azlist/%s?page=%d", c.baseURL, url.PathEscape(c.sort), page)
	res, err := c.fetcher.Do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	if res.NotFound() {
		// The source never 404s a valid sort mode; treat it as an empty page.
		return nil, nil
	}
	var payload azListResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "listing", fmt.Sprintf("decode page %d", page), "", err)
	}
	c.logger.Debug("page fetched",
		logging.Int(logging.FieldPage, page),
		logging.Int("items", len(payload.Data.Animes)),
	)
	return payload.Data.Animes, nil
}

// QuickInfo fetches per-item detail. A "not found" response yields an empty
// Detail rather than an error.
func (c *Client) QuickInfo(ctx context.Context, itemID string) (Detail, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Detail{}, errors.New("item id required")
	}
	endpoint := c.baseURL + "/api/v2/hianime/qtip/" + url.PathEscape(itemID)
	res, err := c.fetcher.Do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return Detail{}, fmt.Errorf("fetch quick info for %s: %w", itemID, err)
	}
	if res.NotFound() {
		return Detail{}, nil
	}
	var payload quickInfoResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return Detail{}, services.Wrap(services.ErrValidation, "listing", "decode quick info for "+itemID, "", err)
	}
	return Detail{Episodes: payload.Data.Anime.Episodes.Sub}, nil
}

// SortMode returns the crawl ordering the client was configured with.
func (c *Client) SortMode() string {
	return c.sort
}
