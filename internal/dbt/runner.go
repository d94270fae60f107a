package dbt

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single dbt invocation when no timeout is configured.
const DefaultTimeout = 10 * time.Minute

// Runner abstracts command execution for testability.
type Runner interface {
	// Run executes name with args in dir (the current directory when empty),
	// with env appended to the current environment. It returns combined
	// stdout and stderr and the exit code.
	// A non-zero exit is reported through exitCode, not err; err is reserved
	// for failures to start or wait on the process.
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (output []byte, exitCode int, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Timeout for each command execution.
	Timeout time.Duration
}

// NewExecRunner creates a runner with the given timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Timeout: timeout}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return out, exitErr.ExitCode(), nil
		}
		if ctx.Err() != nil {
			return out, -1, ctx.Err()
		}
		return out, -1, err
	}
	return out, 0, nil
}
