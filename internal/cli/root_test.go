package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapimpact/internal/testutil"
)

func runRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// setupRun points the environment at an empty DataHub and a dbt that
// reports one changed model, inside a fresh working directory.
func setupRun(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entities" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"value": {"numEntities": 0, "entities": []}}`)
	}))
	t.Cleanup(srv.Close)

	dbtPath, _ := testutil.FakeExecutable(t, "dbt",
		`{"unique_id": "model.jaffle.orders", "original_file_path": "models/orders.sql"}`+"\n", 0)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATAHUB_GMS_HOST", srv.URL)
	t.Setenv("DATAHUB_GMS_TOKEN", "")
	t.Setenv("DATAHUB_FRONTEND_URL", "https://datahub.example.com")
	t.Setenv("DBT_ARTIFACT_STATE_PATH", "prod-target")
	t.Setenv("LEAPIMPACT_DBT__EXECUTABLE", dbtPath)
	return dir
}

func TestRoot_RunsAnalysis(t *testing.T) {
	dir := setupRun(t)

	stdout, stderr, err := runRoot(t)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "impact_analysis.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "- **1** dbt models changed")
	assert.Contains(t, stdout, "(not found)")
	assert.Contains(t, stderr, "run_id=")
}

func TestRoot_FlagsOverrideEnvironment(t *testing.T) {
	dir := setupRun(t)

	_, stderr, err := runRoot(t, "analyze", "-o", "reports/impact.md", "--quiet", "--log-format", "json")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "reports", "impact.md"))
	require.NoError(t, err)
	assert.Contains(t, stderr, `"run_id":`)
}

func TestRoot_BadConfigFileStillWritesReport(t *testing.T) {
	dir := setupRun(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapimpact.yaml"), []byte("datahub: [unclosed\n"), 0o600))

	_, _, err := runRoot(t)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "impact_analysis.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "## Impact Analysis\n\nFailed to run impact analysis: failed to load config"))

	_, _, err = runRoot(t, "--strict")
	assert.Error(t, err)
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapimpact v"+Version)
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapimpact")

	_, _, err = runRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestRoot_RejectsArguments(t *testing.T) {
	_, _, err := runRoot(t, "unexpected")
	assert.Error(t, err)
}
