package impact

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// ChangeLister lists the dbt nodes changed relative to a baseline state.
type ChangeLister interface {
	ChangedNodes(ctx context.Context, stateRef string) ([]core.ChangedNode, error)
}

// Config holds analyzer configuration.
type Config struct {
	// StateRef points dbt at the baseline artifacts.
	StateRef string
	// MaxSearchResults is the URN search page size (default DefaultMaxSearchResults).
	MaxSearchResults int
	// MaxDownstreams is the lineage count per URN (default DefaultMaxDownstreams).
	MaxDownstreams int
	// LineageConcurrency bounds the lineage queries in flight (default 1).
	LineageConcurrency int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Analyzer runs the impact analysis pipeline.
type Analyzer struct {
	changes     ChangeLister
	resolver    *Resolver
	lineage     *LineageFetcher
	stateRef    string
	concurrency int
	logger      *slog.Logger
}

// NewAnalyzer wires the pipeline steps together.
func NewAnalyzer(changes ChangeLister, catalog core.Catalog, cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := cfg.LineageConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Analyzer{
		changes:     changes,
		resolver:    NewResolver(catalog, cfg.MaxSearchResults, logger),
		lineage:     NewLineageFetcher(catalog, cfg.MaxDownstreams, logger),
		stateRef:    cfg.StateRef,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run executes the pipeline. Any error aborts the remaining steps and no
// partial report is returned.
func (a *Analyzer) Run(ctx context.Context) (*core.ImpactReport, error) {
	start := time.Now()

	// Step 1 - which dbt nodes changed in this branch.
	nodes, err := a.changes.ChangedNodes(ctx, a.stateRef)
	if err != nil {
		return nil, err
	}

	// Step 2 - map dbt nodes to catalog urns.
	resolutions, err := a.resolver.Resolve(ctx, nodes)
	if err != nil {
		return nil, err
	}

	// Step 3 - downstream lineage per resolved urn.
	sections, err := a.fetchSections(ctx, resolutions)
	if err != nil {
		return nil, err
	}
	report := &core.ImpactReport{
		ChangedNodes: nodes,
		Sections:     sections,
	}
	resolved := make(map[string]bool, len(resolutions))
	for _, res := range resolutions {
		resolved[res.Node.UniqueID] = true
	}

	for _, n := range nodes {
		if !resolved[n.UniqueID] {
			report.Unresolved = append(report.Unresolved, n)
		}
	}

	a.logger.Info("impact analysis complete",
		"changed", len(nodes),
		"resolved", len(report.Sections),
		"unresolved", len(report.Unresolved),
		"impacted", len(report.ImpactedURNs()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if len(report.Unresolved) > 0 {
		a.logger.Warn("changed dbt nodes not found in datahub", "count", len(report.Unresolved))
	}
	return report, nil
}

// fetchSections queries lineage for every resolution, at most a.concurrency
// at a time. Sections keep resolution order. The first error cancels the
// remaining queries.
func (a *Analyzer) fetchSections(ctx context.Context, resolutions []Resolution) ([]core.Section, error) {
	sections := make([]core.Section, len(resolutions))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, res := range resolutions {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			downstreams, err := a.lineage.FetchDownstream(egctx, res.URN)
			if err != nil {
				return err
			}
			sections[i] = core.Section{
				Node:        res.Node,
				URN:         res.URN,
				Downstreams: downstreams,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}
