package config

import (
	"fmt"
	"net/url"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// Validate checks that everything needed to reach DataHub is configured.
// The dbt state path is checked by the change detector itself.
func (c *Config) Validate() error {
	if c.DataHub.GMSHost == "" {
		return &core.ConfigError{Key: "DATAHUB_GMS_HOST", Message: "must be set to the DataHub GMS URL"}
	}
	if err := validateURL(c.DataHub.GMSHost); err != nil {
		return &core.ConfigError{Key: "DATAHUB_GMS_HOST", Message: err.Error()}
	}
	if c.DataHub.FrontendURL == "" {
		return &core.ConfigError{Key: "DATAHUB_FRONTEND_URL", Message: "must be set to the DataHub frontend URL"}
	}
	if err := validateURL(c.DataHub.FrontendURL); err != nil {
		return &core.ConfigError{Key: "DATAHUB_FRONTEND_URL", Message: err.Error()}
	}
	if c.OutputPath == "" {
		return &core.ConfigError{Key: "output_path", Message: "must not be empty"}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &core.ConfigError{Key: "log_format", Message: fmt.Sprintf("unknown format %q (text|json)", c.LogFormat)}
	}
	switch c.SummaryFormat {
	case "auto", "table", "markdown":
	default:
		return &core.ConfigError{Key: "summary_format", Message: fmt.Sprintf("unknown format %q (auto|table|markdown)", c.SummaryFormat)}
	}
	if c.DataHub.LineageConcurrency < 1 {
		return &core.ConfigError{Key: "datahub.lineage_concurrency", Message: "must be at least 1"}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
