package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeExecutable writes a shell script named name into a temp dir that prints
// output and exits with exitCode. It also records its arguments, one per
// line, followed by "state=<DBT_ARTIFACT_STATE_PATH>" and "cwd=<working dir>",
// to the returned args file. Tests using it are skipped on Windows.
func FakeExecutable(t testing.TB, name, output string, exitCode int) (path, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executables are shell scripts")
	}

	dir := t.TempDir()
	path = filepath.Join(dir, name)
	argsFile = filepath.Join(dir, "args.txt")
	outFile := filepath.Join(dir, "output.txt")

	if err := os.WriteFile(outFile, []byte(output), 0o600); err != nil {
		t.Fatalf("failed to write fake output: %v", err)
	}

	script := fmt.Sprintf(`#!/bin/sh
for a in "$@"; do echo "$a" >> %q; done
echo "state=$DBT_ARTIFACT_STATE_PATH" >> %q
echo "cwd=$(pwd)" >> %q
cat %q
exit %d
`, argsFile, argsFile, argsFile, outFile, exitCode)

	if err := os.WriteFile(path, []byte(script), 0o700); err != nil { //nolint:gosec // test executable
		t.Fatalf("failed to write fake executable: %v", err)
	}
	return path, argsFile
}

// ReadLines returns the non-empty lines of a file.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
