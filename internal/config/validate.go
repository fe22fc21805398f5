package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateSupabase(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateListing() error {
	if strings.TrimSpace(c.Listing.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/anicat/config.toml"
		}
		return fmt.Errorf("listing.base_url is required. Edit %s (create with 'anicat config init')", defaultPath)
	}
	if err := validateURL("listing.base_url", c.Listing.BaseURL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMetadata() error {
	return validateURL("metadata.url", c.Metadata.URL)
}

func (c *Config) validateSupabase() error {
	if strings.TrimSpace(c.Supabase.URL) == "" {
		return errors.New("supabase.url must be set")
	}
	if err := validateURL("supabase.url", c.Supabase.URL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Supabase.ServiceKey) == "" {
		return errors.New("supabase.service_key must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ItemDelayMaxMillis < c.Pipeline.ItemDelayMinMillis {
		return errors.New("pipeline.item_delay_max_ms must be >= pipeline.item_delay_min_ms")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}

func validateURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
