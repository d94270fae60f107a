// Package report renders impact analysis results.
//
// Markdown is the primary output and is what CI posts as a pull request
// comment. The same document can be converted to HTML, and a compact summary
// table is available for terminals. Rendering performs no I/O.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// Title heads every document this package renders.
const Title = "Impact Analysis"

// DefaultMaxDisplayed caps the downstreams listed per changed node.
const DefaultMaxDisplayed = 30

// Footer explains changes reported without file edits.
const Footer = "_If a dbt model is reported as changed even though it's file contents have not changed, " +
	"it's likely because a dbt macro or other metadata has changed._"

// Options controls markdown rendering.
type Options struct {
	// FrontendURL is the DataHub UI base URL links point at.
	FrontendURL string
	// MaxDisplayed caps the listed downstreams per node (default DefaultMaxDisplayed).
	MaxDisplayed int
	// ShowUnresolved lists changed nodes that have no catalog entity.
	ShowUnresolved bool
}

var linkTextEscape = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

// Markdown renders the impact report.
func Markdown(r *core.ImpactReport, opts Options) (string, error) {
	maxDisplayed := opts.MaxDisplayed
	if maxDisplayed <= 0 {
		maxDisplayed = DefaultMaxDisplayed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", Title)
	fmt.Fprintf(&b, "- **%d** dbt models changed\n", len(r.ChangedNodes))
	fmt.Fprintf(&b, "- **%d** downstream entities potentially impacted\n", len(r.ImpactedURNs()))

	for _, s := range r.Sections {
		if err := writeSection(&b, s, opts.FrontendURL, maxDisplayed); err != nil {
			return "", err
		}
	}

	if opts.ShowUnresolved && len(r.Unresolved) > 0 {
		b.WriteString("\n#### Not found in DataHub\n\n")
		for _, n := range r.Unresolved {
			fmt.Fprintf(&b, "- `%s` (%s)\n", n.OriginalFilePath, n.UniqueID)
		}
	}

	b.WriteString("\n\n" + Footer + "\n\n")
	return b.String(), nil
}

func writeSection(b *strings.Builder, s core.Section, frontendURL string, maxDisplayed int) error {
	nodeURL, err := EntityURL(frontendURL, s.URN, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "\n### [%s](%s)\n\n", linkTextEscape.Replace(s.Node.OriginalFilePath), nodeURL)

	if len(s.Downstreams) == 0 {
		b.WriteString("No downstreams impacted.\n")
		return nil
	}

	fmt.Fprintf(b, "May impact **%d** downstreams:\n", len(s.Downstreams))
	for i, d := range s.Downstreams {
		if i == maxDisplayed {
			break
		}
		line, err := FormatEntity(frontendURL, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "- %s\n", line)
	}

	if remaining := len(s.Downstreams) - maxDisplayed; remaining > 0 {
		lineageURL, err := EntityURL(frontendURL, s.URN, LineageSuffix)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "- ...and [%d more](%s)\n", remaining, lineageURL)
	}
	return nil
}

// FormatEntity renders one downstream as "<platform> <type> [<name>](<url>)".
func FormatEntity(frontendURL string, d core.DownstreamEntity) (string, error) {
	u, err := EntityURL(frontendURL, d.URN, "")
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{d.PlatformName(), DisplayType(d)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, fmt.Sprintf("[%s](%s)", linkTextEscape.Replace(d.Name()), u))
	return strings.Join(parts, " "), nil
}

// DisplayType returns the first subtype name when present, otherwise the
// capitalized entity type. An entity without a type falls back to the type
// named in its URN, and to "" when that cannot be parsed either.
func DisplayType(d core.DownstreamEntity) string {
	if st, ok := d.FirstSubType(); ok && st != "" {
		return st
	}
	typ := d.Type
	if typ == "" {
		typ, _ = core.URNEntityType(d.URN)
	}
	return cases.Title(language.Und).String(typ)
}

// Failure renders the document written in place of the report when the
// analysis fails.
func Failure(err error) string {
	return fmt.Sprintf("## %s\n\nFailed to run impact analysis: %v\n\nSee the logs for full details.\n", Title, err)
}
