package core

import (
	"fmt"
	"strings"
)

// ConfigError reports missing or invalid configuration.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

// ToolInvocationError reports an external tool that exited unsuccessfully.
type ToolInvocationError struct {
	Command  []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("%s failed", strings.Join(e.Command, " "))
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// ParseError reports tool output that could not be decoded.
// Output holds the complete raw output for diagnosis.
type ParseError struct {
	Line   string
	Output string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse tool output line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
