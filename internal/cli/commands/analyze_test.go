package commands

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapimpact/internal/cli/config"
	"github.com/leapstack-labs/leapimpact/internal/report"
	"github.com/leapstack-labs/leapimpact/internal/testutil"
)

const (
	ordersURN = "urn:li:dataset:(urn:li:dataPlatform:snowflake,analytics.public.orders,PROD)"

	twoChangedModels = `{"unique_id": "model.jaffle.orders", "original_file_path": "models/orders.sql"}
{"unique_id": "model.jaffle.customers", "original_file_path": "models/customers.sql"}
`
)

// fakeDataHub serves a catalog where only the orders model is known and has
// no downstream consumers.
func fakeDataHub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/entities":
			_, _ = io.WriteString(w, `{"value": {"numEntities": 1, "entities": [{"entity": "`+ordersURN+`"}]}}`)
		case strings.HasPrefix(r.URL.Path, "/aspects/"):
			assert.Equal(t, "/aspects/"+ordersURN, r.URL.Path)
			_, _ = io.WriteString(w, `{"aspect": {"com.linkedin.dataset.DatasetProperties": {
				"name": "orders",
				"customProperties": {"dbt_unique_id": "model.jaffle.orders"}
			}}}`)
		case r.URL.Path == "/api/graphql":
			_, _ = io.WriteString(w, `{"data": {"searchAcrossLineage": {"searchResults": []}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func analysisConfig(t *testing.T, gmsHost, dbtOutput string, dbtExit int) *config.Config {
	t.Helper()
	dbtPath, _ := testutil.FakeExecutable(t, "dbt", dbtOutput, dbtExit)

	cfg := config.Default()
	cfg.DataHub.GMSHost = gmsHost
	cfg.DataHub.FrontendURL = "https://datahub.example.com"
	cfg.DBT.Executable = dbtPath
	cfg.DBT.StatePath = "prod-target"
	cfg.OutputPath = filepath.Join(t.TempDir(), "impact_analysis.md")
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	return string(data)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	srv := fakeDataHub(t)
	cfg := analysisConfig(t, srv.URL, twoChangedModels, 0)
	cfg.HTMLPath = filepath.Join(t.TempDir(), "html", "impact.html")

	cmd := NewAnalyzeCommand()
	out := withConfig(t, cmd, cfg, nil)
	require.NoError(t, cmd.ExecuteContext(cmd.Context()))

	doc := readFile(t, cfg.OutputPath)
	assert.True(t, strings.HasPrefix(doc, "## Impact Analysis\n"))
	assert.Contains(t, doc, "- **2** dbt models changed")
	assert.Contains(t, doc, "- **0** downstream entities potentially impacted")
	assert.Equal(t, 1, strings.Count(doc, "\n### "), "one section per resolved model")
	assert.Contains(t, doc, "### [models/orders.sql](https://datahub.example.com/dataset/")
	assert.Contains(t, doc, "No downstreams impacted.")
	assert.NotContains(t, doc, "models/customers.sql")

	html := readFile(t, cfg.HTMLPath)
	assert.Contains(t, html, "<h2>Impact Analysis</h2>")

	assert.Contains(t, out.String(), "model.jaffle.orders")
	assert.Contains(t, out.String(), "(not found)")
}

func TestAnalyze_ShowUnresolved(t *testing.T) {
	srv := fakeDataHub(t)
	cfg := analysisConfig(t, srv.URL, twoChangedModels, 0)
	cfg.Report.ShowUnresolved = true
	cfg.Quiet = true

	cmd := NewAnalyzeCommand()
	out := withConfig(t, cmd, cfg, nil)
	require.NoError(t, cmd.ExecuteContext(cmd.Context()))

	assert.Contains(t, readFile(t, cfg.OutputPath), "models/customers.sql")
	assert.NotContains(t, out.String(), "model.jaffle.orders", "quiet suppresses the summary")
}

func TestAnalyze_OverwritesExistingReport(t *testing.T) {
	srv := fakeDataHub(t)
	cfg := analysisConfig(t, srv.URL, "No nodes selected!\n", 0)
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte("stale report from a previous run\n"), 0o600))

	cmd := NewAnalyzeCommand()
	withConfig(t, cmd, cfg, nil)
	require.NoError(t, cmd.ExecuteContext(cmd.Context()))

	doc := readFile(t, cfg.OutputPath)
	assert.NotContains(t, doc, "stale")
	assert.Contains(t, doc, "- **0** dbt models changed")
}

func TestAnalyze_FailureWritesErrorDocument(t *testing.T) {
	srv := fakeDataHub(t)

	tests := []struct {
		name     string
		mutate   func(cfg *config.Config)
		dbtOut   string
		dbtExit  int
		loadErr  error
		wantText string
	}{
		{
			name:     "dbt fails",
			dbtOut:   "Runtime Error: Could not find profile named 'jaffle'\n",
			dbtExit:  2,
			wantText: "exit",
		},
		{
			name:     "unparseable dbt output",
			dbtOut:   "this is not json\n",
			wantText: "this is not json",
		},
		{
			name:     "missing gms host",
			mutate:   func(cfg *config.Config) { cfg.DataHub.GMSHost = "" },
			dbtOut:   twoChangedModels,
			wantText: "DATAHUB_GMS_HOST",
		},
		{
			name:     "missing state path",
			mutate:   func(cfg *config.Config) { cfg.DBT.StatePath = "" },
			dbtOut:   twoChangedModels,
			wantText: "DBT_ARTIFACT_STATE_PATH",
		},
		{
			name:     "config failed to load",
			dbtOut:   twoChangedModels,
			loadErr:  errors.New("yaml: line 3: did not find expected key"),
			wantText: "failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := analysisConfig(t, srv.URL, tt.dbtOut, tt.dbtExit)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			cmd := NewAnalyzeCommand()
			out := withConfig(t, cmd, cfg, tt.loadErr)
			require.NoError(t, cmd.ExecuteContext(cmd.Context()), "failures exit 0 unless strict")

			doc := readFile(t, cfg.OutputPath)
			assert.True(t, strings.HasPrefix(doc, "## Impact Analysis\n\nFailed to run impact analysis: "), doc)
			assert.Contains(t, doc, tt.wantText)
			assert.True(t, strings.HasSuffix(doc, "\n\nSee the logs for full details.\n"))
			assert.NotContains(t, doc, "dbt models changed", "no partial report")
			assert.Empty(t, out.String(), "no summary after a failure")
		})
	}
}

func TestAnalyze_StrictReturnsError(t *testing.T) {
	srv := fakeDataHub(t)
	cfg := analysisConfig(t, srv.URL, "boom\n", 1)
	cfg.Strict = true

	cmd := NewAnalyzeCommand()
	withConfig(t, cmd, cfg, nil)
	err := cmd.ExecuteContext(cmd.Context())

	require.Error(t, err)
	assert.Contains(t, readFile(t, cfg.OutputPath), "Failed to run impact analysis")
}

func TestAnalyze_DataHubUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := analysisConfig(t, srv.URL, twoChangedModels, 0)

	cmd := NewAnalyzeCommand()
	withConfig(t, cmd, cfg, nil)
	require.NoError(t, cmd.ExecuteContext(cmd.Context()))

	doc := readFile(t, cfg.OutputPath)
	assert.Contains(t, doc, "Failed to run impact analysis")
	assert.Contains(t, doc, "503")
}

func TestSummaryFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, report.SummaryTable, summaryFormat("table", &buf))
	assert.Equal(t, report.SummaryMarkdown, summaryFormat("markdown", &buf))
	assert.Equal(t, report.SummaryMarkdown, summaryFormat("auto", &buf), "a buffer is not a terminal")

	f, err := os.CreateTemp(t.TempDir(), "summary")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, report.SummaryMarkdown, summaryFormat("auto", f), "a regular file is not a terminal")
}
