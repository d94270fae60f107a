// Package core defines the shared language of the leapimpact system.
//
// This package contains:
//   - Domain entities (ChangedNode, DownstreamEntity, ImpactReport)
//   - Service interfaces (Catalog)
//   - Error taxonomy (ConfigError, ToolInvocationError, ParseError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
