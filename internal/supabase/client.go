package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"anicat/internal/logging"
	"anicat/internal/services"
)

const defaultHTTPTimeout = 20 * time.Second

// Row is one stored record as returned by the REST endpoint's representation.
type Row map[string]any

// ID returns the server-assigned identifier of the stored row.
func (r Row) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}

// Client inserts records through the Supabase REST endpoint. Inserts are
// single-shot: a non-success status is a terminal write error for that call,
// never retried here, because a blind replay could duplicate rows.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Supabase REST client.
func New(baseURL, serviceKey string, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url required")
	}
	serviceKey = strings.TrimSpace(serviceKey)
	if serviceKey == "" {
		return nil, errors.New("supabase service key required")
	}
	client := &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewComponentLogger(logger, "supabase"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Insert posts one record and returns the stored representation. The
// representation is requested on every insert so callers can chain the
// server-assigned id into dependent records.
func (c *Client) Insert(ctx context.Context, table string, payload any) (Row, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("table name required")
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", table, err)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build %s insert: %w", table, err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrWrite, "store", "insert "+table, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrWrite, "store", "insert "+table, "read response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Error("insert failed",
			logging.String("table", table),
			logging.Int("status", resp.StatusCode),
			logging.String("response", strings.TrimSpace(string(body))),
		)
		return nil, services.Wrap(services.ErrWrite, "store", "insert "+table,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, services.Wrap(services.ErrWrite, "store", "insert "+table, "decode representation", err)
	}
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrWrite, "store", "insert "+table, "empty representation", nil)
	}
	return rows[0], nil
}
