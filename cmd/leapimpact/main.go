// Package main provides the CLI for leapimpact, the dbt impact analysis
// report generator.
package main

import (
	"os"

	"github.com/leapstack-labs/leapimpact/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
