// Package dbt wraps the dbt command-line tool.
// It lists the nodes that changed relative to a baseline manifest and reads
// dbt project metadata.
package dbt

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// StateEnvVar is the environment variable dbt reads the baseline state path from.
const StateEnvVar = "DBT_ARTIFACT_STATE_PATH"

// noNodesNotice is printed by dbt instead of JSON lines when the selector
// matches nothing.
const noNodesNotice = "No nodes selected!"

// Options configures a ChangeDetector.
type Options struct {
	// Executable is the dbt binary to run (default "dbt").
	Executable string
	// ProjectDir is passed as --project-dir when set.
	ProjectDir string
	// ProfilesDir is passed as --profiles-dir when set.
	ProfilesDir string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// ChangeDetector lists dbt nodes modified relative to a baseline state.
type ChangeDetector struct {
	runner Runner
	opts   Options
	logger *slog.Logger
}

// NewChangeDetector creates a change detector that runs dbt through runner.
func NewChangeDetector(runner Runner, opts Options) *ChangeDetector {
	if opts.Executable == "" {
		opts.Executable = "dbt"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChangeDetector{runner: runner, opts: opts, logger: logger}
}

// Args returns the dbt arguments used to list changed nodes.
func (d *ChangeDetector) Args() []string {
	args := []string{
		"ls",
		"-s", "state:modified",
		"--resource-type", "model",
		"--resource-type", "snapshot",
		"--output", "json",
		"--output-keys", "unique_id,original_file_path",
	}
	if d.opts.ProjectDir != "" {
		args = append(args, "--project-dir", d.opts.ProjectDir)
	}
	if d.opts.ProfilesDir != "" {
		args = append(args, "--profiles-dir", d.opts.ProfilesDir)
	}
	return args
}

// ChangedNodes runs dbt ls against the baseline at stateRef and returns the
// modified models and snapshots.
// dbt ls regenerates the manifest, so the result always reflects the working tree.
func (d *ChangeDetector) ChangedNodes(ctx context.Context, stateRef string) ([]core.ChangedNode, error) {
	if stateRef == "" {
		return nil, &core.ConfigError{Key: StateEnvVar, Message: "must be set to the baseline dbt artifacts directory"}
	}

	args := d.Args()
	d.logger.Debug("listing changed dbt nodes", "executable", d.opts.Executable, "state", stateRef)

	// dbt runs in the caller's working directory so relative --project-dir,
	// --profiles-dir and state paths resolve the way the user wrote them.
	out, exitCode, err := d.runner.Run(ctx, "", []string{StateEnvVar + "=" + stateRef}, d.opts.Executable, args...)
	if err != nil || exitCode != 0 {
		return nil, &core.ToolInvocationError{
			Command:  append([]string{d.opts.Executable}, args...),
			ExitCode: exitCode,
			Output:   string(out),
			Err:      err,
		}
	}

	nodes, err := ParseNodeList(out)
	if err != nil {
		d.logger.Error("unable to parse dbt ls output", "error", err, "output", string(out))
		return nil, err
	}

	d.logger.Info("determined changed dbt nodes", "count", len(nodes))
	return nodes, nil
}

// ParseNodeList decodes newline-delimited JSON emitted by dbt ls.
// Output carrying dbt's "no nodes selected" notice yields an empty list.
// Duplicate unique_ids keep their first occurrence.
func ParseNodeList(out []byte) ([]core.ChangedNode, error) {
	if bytes.Contains(out, []byte(noNodesNotice)) {
		return []core.ChangedNode{}, nil
	}

	nodes := []core.ChangedNode{}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var node core.ChangedNode
		if err := json.Unmarshal([]byte(line), &node); err != nil {
			return nil, &core.ParseError{Line: line, Output: string(out), Err: err}
		}
		if node.UniqueID == "" {
			return nil, &core.ParseError{Line: line, Output: string(out), Err: fmt.Errorf("missing unique_id")}
		}
		if seen[node.UniqueID] {
			continue
		}
		seen[node.UniqueID] = true
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.ParseError{Output: string(out), Err: err}
	}
	return nodes, nil
}
