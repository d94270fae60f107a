// Package config provides configuration management for the leapimpact CLI.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional leapimpact.yaml, environment variables, then command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	DataHub       DataHubConfig `koanf:"datahub"`
	DBT           DBTConfig     `koanf:"dbt"`
	Report        ReportConfig  `koanf:"report"`
	OutputPath    string        `koanf:"output_path"`
	HTMLPath      string        `koanf:"html_path"`
	LogFormat     string        `koanf:"log_format"`
	SummaryFormat string        `koanf:"summary_format"`
	Verbose       bool          `koanf:"verbose"`
	Quiet         bool          `koanf:"quiet"`
	Strict        bool          `koanf:"strict"`
}

// DataHubConfig locates the DataHub instance and bounds its queries.
type DataHubConfig struct {
	GMSHost            string        `koanf:"gms_host"`
	GMSToken           string        `koanf:"gms_token"`
	FrontendURL        string        `koanf:"frontend_url"`
	Timeout            time.Duration `koanf:"timeout"`
	MaxSearchResults   int           `koanf:"max_search_results"`
	MaxDownstreams     int           `koanf:"max_downstreams"`
	LineageConcurrency int           `koanf:"lineage_concurrency"`
}

// DBTConfig controls how dbt is invoked.
type DBTConfig struct {
	Executable  string        `koanf:"executable"`
	ProjectDir  string        `koanf:"project_dir"`
	ProfilesDir string        `koanf:"profiles_dir"`
	StatePath   string        `koanf:"state_path"`
	Timeout     time.Duration `koanf:"timeout"`
}

// ReportConfig shapes the rendered report.
type ReportConfig struct {
	MaxDisplayed   int  `koanf:"max_displayed"`
	ShowUnresolved bool `koanf:"show_unresolved"`
}

// Default configuration values.
const (
	DefaultOutputPath       = "impact_analysis.md"
	DefaultLogFormat        = "text"
	DefaultDBTExecutable    = "dbt"
	DefaultDBTTimeout       = 10 * time.Minute
	DefaultDataHubTimeout   = 30 * time.Second
	DefaultMaxSearchResults = 10000
	DefaultMaxDownstreams   = 1000
	DefaultMaxDisplayed     = 30
	DefaultSummaryFormat    = "auto"
)

// Default returns a Config populated with default values only.
func Default() *Config {
	return &Config{
		DataHub: DataHubConfig{
			Timeout:            DefaultDataHubTimeout,
			MaxSearchResults:   DefaultMaxSearchResults,
			MaxDownstreams:     DefaultMaxDownstreams,
			LineageConcurrency: 1,
		},
		DBT: DBTConfig{
			Executable: DefaultDBTExecutable,
			Timeout:    DefaultDBTTimeout,
		},
		Report: ReportConfig{
			MaxDisplayed: DefaultMaxDisplayed,
		},
		OutputPath:    DefaultOutputPath,
		LogFormat:     DefaultLogFormat,
		SummaryFormat: DefaultSummaryFormat,
	}
}
