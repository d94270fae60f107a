package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix marks generic overrides, e.g. LEAPIMPACT_REPORT__MAX_DISPLAYED.
// A double underscore separates nesting levels.
const EnvPrefix = "LEAPIMPACT_"

// ConfigFileNames are searched in the working directory, in order.
var ConfigFileNames = []string{"leapimpact.yaml", "leapimpact.yml"}

// WellKnownEnv maps the environment variables CI systems already export
// to config keys. They are read without the EnvPrefix.
var WellKnownEnv = map[string]string{
	"DATAHUB_GMS_HOST":        "datahub.gms_host",
	"DATAHUB_GMS_TOKEN":       "datahub.gms_token",
	"DATAHUB_FRONTEND_URL":    "datahub.frontend_url",
	"DBT_ARTIFACT_STATE_PATH": "dbt.state_path",
}

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"output":          "output_path",
	"html":            "html_path",
	"state":           "dbt.state_path",
	"project-dir":     "dbt.project_dir",
	"profiles-dir":    "dbt.profiles_dir",
	"max-displayed":   "report.max_displayed",
	"show-unresolved": "report.show_unresolved",
	"summary":         "summary_format",
	"concurrency":     "datahub.lineage_concurrency",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > leapimpact.yaml > leapimpact.yml
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func defaults() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"datahub.timeout":             d.DataHub.Timeout,
		"datahub.max_search_results":  d.DataHub.MaxSearchResults,
		"datahub.max_downstreams":     d.DataHub.MaxDownstreams,
		"datahub.lineage_concurrency": d.DataHub.LineageConcurrency,
		"dbt.executable":              d.DBT.Executable,
		"dbt.timeout":                 d.DBT.Timeout,
		"report.max_displayed":        d.Report.MaxDisplayed,
		"report.show_unresolved":      false,
		"output_path":                 d.OutputPath,
		"log_format":                  d.LogFormat,
		"summary_format":              d.SummaryFormat,
		"verbose":                     false,
		"quiet":                       false,
		"strict":                      false,
	}
}

// Load loads configuration from defaults, a config file, environment
// variables and flags. It returns the config and the config file used, if any.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	cwd, _ := os.Getwd()
	configFileUsed := findConfigFile(cfgFile, cwd)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Well-known environment variables
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		mapped, ok := WellKnownEnv[key]
		if !ok || value == "" {
			return "", nil
		}
		return mapped, value
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Prefixed environment variables
	// Transform: LEAPIMPACT_DATAHUB__GMS_HOST -> datahub.gms_host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.DataHub.GMSToken = expandEnvVars(cfg.DataHub.GMSToken)
	cfg.DataHub.GMSHost = strings.TrimRight(cfg.DataHub.GMSHost, "/")
	cfg.DataHub.FrontendURL = strings.TrimRight(cfg.DataHub.FrontendURL, "/")

	return &cfg, configFileUsed, nil
}

// expandEnvVars expands ${VAR} patterns so secrets can stay out of the config file.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, func(name string) string {
		return os.Getenv(name)
	})
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
