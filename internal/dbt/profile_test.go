package dbt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(content), 0o600))
	return dir
}

func TestProjectProfile(t *testing.T) {
	dir := writeProject(t, `name: jaffle_shop
version: '1.0.0'
profile: jaffle_shop_snowflake
model-paths: ["models"]
`)

	profile, err := ProjectProfile(dir)
	require.NoError(t, err)
	assert.Equal(t, "jaffle_shop_snowflake", profile)
}

func TestProjectProfile_Missing(t *testing.T) {
	dir := writeProject(t, "name: jaffle_shop\n")

	_, err := ProjectProfile(dir)
	assert.ErrorContains(t, err, "has no profile set")
}

func TestLoadProject_NoFile(t *testing.T) {
	_, err := LoadProject(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadProject_InvalidYAML(t *testing.T) {
	dir := writeProject(t, "name: [unterminated\n")

	_, err := LoadProject(dir)
	assert.ErrorContains(t, err, "failed to parse")
}
