package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeListing()
	c.normalizeMetadata()
	c.normalizeSupabase()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeListing() {
	c.Listing.BaseURL = strings.TrimRight(strings.TrimSpace(c.Listing.BaseURL), "/")
	c.Listing.Sort = strings.TrimSpace(c.Listing.Sort)
	if c.Listing.Sort == "" {
		c.Listing.Sort = defaultListingSort
	}
	if c.Listing.TimeoutSeconds <= 0 {
		c.Listing.TimeoutSeconds = defaultListingTimeout
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.URL = strings.TrimSpace(c.Metadata.URL)
	if c.Metadata.URL == "" {
		c.Metadata.URL = defaultMetadataURL
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeout
	}
}

func (c *Config) normalizeSupabase() {
	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")
	c.Supabase.ServiceKey = strings.TrimSpace(c.Supabase.ServiceKey)
	if c.Supabase.TimeoutSeconds <= 0 {
		c.Supabase.TimeoutSeconds = defaultSupabaseTimeout
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.StartPage <= 0 {
		c.Pipeline.StartPage = defaultStartPage
	}
	if c.Pipeline.RetryAttempts <= 0 {
		c.Pipeline.RetryAttempts = defaultRetryAttempts
	}
	if c.Pipeline.RetryDelaySeconds < 0 {
		c.Pipeline.RetryDelaySeconds = defaultRetryDelaySeconds
	}
	if c.Pipeline.RetryJitterSeconds < 0 {
		c.Pipeline.RetryJitterSeconds = defaultRetryJitterSeconds
	}
	if c.Pipeline.ItemDelayMinMillis < 0 {
		c.Pipeline.ItemDelayMinMillis = defaultItemDelayMinMillis
	}
	if c.Pipeline.ItemDelayMaxMillis <= 0 {
		c.Pipeline.ItemDelayMaxMillis = defaultItemDelayMaxMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
