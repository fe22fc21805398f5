package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"anicat/internal/fetch"
	"anicat/internal/logging"
	"anicat/internal/services"
)

const mediaQuery = `
query ($search: String) {
  Media(search: $search, type: ANIME) {
    id
    title {
      romaji
      english
    }
    coverImage {
      large
    }
    bannerImage
    trailer {
      site
      id
    }
    genres
    episodes
    format
    description
  }
}
`

// Media is the reconciled metadata record for a single title.
type Media struct {
	ID           int
	TitleRomaji  string
	TitleEnglish string
	Description  string
	CoverImage   string
	BannerImage  string
	TrailerSite  string
	TrailerID    string
	Genres       []string
	Episodes     int
	Format       string
}

// TrailerURL converts the trailer reference to a public watch URL. Only
// YouTube-hosted trailers are recognized; any other platform yields "".
func (m *Media) TrailerURL() string {
	if m == nil || m.TrailerSite != "youtube" || m.TrailerID == "" {
		return ""
	}
	return "https://youtu.be/" + m.TrailerID
}

// Client reconciles raw listing titles against an AniList-compatible GraphQL
// endpoint.
type Client struct {
	endpoint string
	fetcher  *fetch.Client
	logger   *slog.Logger
}

// New creates a metadata client.
func New(endpoint string, fetcher *fetch.Client, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "new", "endpoint required", nil)
	}
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "new", "fetch client required", nil)
	}
	return &Client{
		endpoint: endpoint,
		fetcher:  fetcher,
		logger:   logging.NewComponentLogger(logger, "metadata"),
	}, nil
}

type lookupRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Search string `json:"search"`
	} `json:"variables"`
}

type lookupResponse struct {
	Data struct {
		Media *mediaPayload `json:"Media"`
	} `json:"data"`
}

type mediaPayload struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	CoverImage struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	BannerImage string `json:"bannerImage"`
	Trailer     *struct {
		Site string `json:"site"`
		ID   string `json:"id"`
	} `json:"trailer"`
	Genres      []string `json:"genres"`
	Episodes    int      `json:"episodes"`
	Format      string   `json:"format"`
	Description string   `json:"description"`
}

// Lookup reconciles a raw title. The cleaned variant is queried first and the
// raw title queried only when the cleaned query yields no match; the first
// non-empty match wins. A nil Media with nil error means neither attempt
// matched, which callers treat as a skip, not a failure.
func (c *Client) Lookup(ctx context.Context, rawTitle string) (*Media, error) {
	for _, search := range searchCandidates(rawTitle) {
		media, err := c.query(ctx, search)
		if err != nil {
			return nil, err
		}
		if media != nil {
			return media, nil
		}
		c.logger.Debug("lookup attempt empty", logging.String("search", search))
	}
	return nil, nil
}

func searchCandidates(rawTitle string) []string {
	cleaned := CleanTitle(rawTitle)
	if cleaned == rawTitle || cleaned == "" {
		return []string{rawTitle}
	}
	return []string{cleaned, rawTitle}
}

func (c *Client) query(ctx context.Context, search string) (*Media, error) {
	var request lookupRequest
	request.Query = mediaQuery
	request.Variables.Search = search
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode lookup: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	res, err := c.fetcher.Do(ctx, http.MethodPost, c.endpoint, header, body)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", search, err)
	}
	if res.NotFound() {
		return nil, nil
	}

	var payload lookupResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "metadata", fmt.Sprintf("decode lookup %q", search), "", err)
	}
	if payload.Data.Media == nil {
		return nil, nil
	}
	return fromPayload(payload.Data.Media), nil
}

func fromPayload(p *mediaPayload) *Media {
	media := &Media{
		ID:           p.ID,
		TitleRomaji:  p.Title.Romaji,
		TitleEnglish: p.Title.English,
		Description:  p.Description,
		CoverImage:   p.CoverImage.Large,
		BannerImage:  p.BannerImage,
		Genres:       append([]string(nil), p.Genres...),
		Episodes:     p.Episodes,
		Format:       p.Format,
	}
	if p.Trailer != nil {
		media.TrailerSite = p.Trailer.Site
		media.TrailerID = p.Trailer.ID
	}
	return media
}
