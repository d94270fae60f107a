package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/leapstack-labs/leapimpact/internal/cli/config"
)

// ConfigField is one leaf key of the configuration file.
type ConfigField struct {
	Key     string
	Type    string
	Default string
}

// configDescriptions documents each key. Keys missing here fail generation
// so new options cannot ship undocumented.
var configDescriptions = map[string]string{
	"datahub.gms_host":            "DataHub GMS base URL. Required.",
	"datahub.gms_token":           "Personal access token sent as a bearer token. `${VAR}` references are expanded.",
	"datahub.frontend_url":        "DataHub frontend URL used for links in the report. Required.",
	"datahub.timeout":             "Timeout for each DataHub request.",
	"datahub.max_search_results":  "Maximum URNs returned by the dataset search. Results beyond it are not paged.",
	"datahub.max_downstreams":     "Maximum downstream entities fetched per changed model.",
	"datahub.lineage_concurrency": "Lineage queries in flight at once.",
	"dbt.executable":              "dbt executable to run.",
	"dbt.project_dir":             "dbt project directory (passed as `--project-dir`).",
	"dbt.profiles_dir":            "dbt profiles directory (passed as `--profiles-dir`).",
	"dbt.state_path":              "Baseline artifacts dbt compares against. Required.",
	"dbt.timeout":                 "Timeout for the dbt invocation.",
	"report.max_displayed":        "Downstream entities listed per model before the rest are collapsed into a link.",
	"report.show_unresolved":      "List changed models that were not found in DataHub.",
	"output_path":                 "Markdown report path. The file is overwritten on every run.",
	"html_path":                   "Optional path for an HTML rendering of the report.",
	"log_format":                  "Log format: `text` or `json`.",
	"summary_format":              "Summary printed after a run: `auto`, `table` or `markdown`.",
	"verbose":                     "Enable debug logging.",
	"quiet":                       "Do not print the summary.",
	"strict":                      "Exit non-zero when the analysis fails.",
}

// configFields walks the koanf tags of v and returns its leaf keys with
// their default values.
func configFields(prefix string, v reflect.Value) []ConfigField {
	var fields []ConfigField
	t := v.Type()
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("koanf")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			fields = append(fields, configFields(key, fv)...)
			continue
		}
		fields = append(fields, ConfigField{
			Key:     key,
			Type:    fieldType(fv),
			Default: defaultString(fv),
		})
	}
	return fields
}

func fieldType(v reflect.Value) string {
	if v.Type() == reflect.TypeOf(time.Duration(0)) {
		return "duration"
	}
	return v.Kind().String()
}

func defaultString(v reflect.Value) string {
	if v.IsZero() {
		return ""
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}
	return fmt.Sprint(v.Interface())
}

// envName is the prefixed environment variable that overrides key.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// generateConfigDocs writes configuration.md into outDir.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fields := configFields("", reflect.ValueOf(*config.Default()))

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leapimpact configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s (or the file given with %s), then from the "+
		"environment, then from command-line flags. Later sources win.",
		InlineCode(config.ConfigFileNames[0]), InlineCode("--config")))

	var rows [][]string
	for _, f := range fields {
		desc, ok := configDescriptions[f.Key]
		if !ok {
			return fmt.Errorf("config key %s has no description", f.Key)
		}
		def := f.Default
		if def != "" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode(f.Key), f.Type, def, InlineCode(envName(f.Key)), desc})
	}
	w.Table([]string{"Key", "Type", "Default", "Environment", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `datahub:
  gms_host: https://acme.acryl.io/gms
  gms_token: ${DATAHUB_GMS_TOKEN}
  frontend_url: https://acme.acryl.io
dbt:
  project_dir: transform
report:
  max_displayed: 20
output_path: impact_analysis.md`)

	log.Printf("  Generated configuration.md")
	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
