package impact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// DefaultMaxSearchResults is the page size of the single URN search.
// Matches beyond it are not fetched.
const DefaultMaxSearchResults = 10000

// Resolution pairs a changed node with the catalog entity it maps to.
type Resolution struct {
	URN  string
	Node core.ChangedNode
}

// Resolver maps dbt unique_ids to catalog dataset URNs.
type Resolver struct {
	catalog    core.Catalog
	maxResults int
	logger     *slog.Logger
}

// NewResolver creates a resolver. maxResults <= 0 uses DefaultMaxSearchResults.
func NewResolver(catalog core.Catalog, maxResults int, logger *slog.Logger) *Resolver {
	if maxResults <= 0 {
		maxResults = DefaultMaxSearchResults
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{catalog: catalog, maxResults: maxResults, logger: logger}
}

// SearchRequestFor builds the dataset search matching any of ids exactly on
// the dbt_unique_id custom property.
func (r *Resolver) SearchRequestFor(ids []string) core.SearchRequest {
	groups := make([]core.CriterionGroup, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, core.CriterionGroup{And: []core.Criterion{{
			Field:     "customProperties",
			Value:     core.DBTUniqueIDProperty + "=" + id,
			Condition: core.ConditionEqual,
		}}})
	}
	return core.SearchRequest{
		Input:  "*",
		Entity: "dataset",
		Start:  0,
		Count:  r.maxResults,
		Filter: core.SearchFilter{Or: groups},
	}
}

// ResolveURNs returns the URNs of datasets whose dbt_unique_id is one of ids.
// An empty ids list returns without calling the catalog.
func (r *Resolver) ResolveURNs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	urns, err := r.catalog.Search(ctx, r.SearchRequestFor(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to search datasets for %d dbt nodes: %w", len(ids), err)
	}

	seen := make(map[string]bool, len(urns))
	unique := make([]string, 0, len(urns))
	for _, urn := range urns {
		if seen[urn] {
			continue
		}
		seen[urn] = true
		unique = append(unique, urn)
	}

	if len(unique) >= r.maxResults {
		r.logger.Warn("urn search hit its result limit, some datasets may be missing", "limit", r.maxResults)
	}
	r.logger.Debug("resolved datahub urns", "requested", len(ids), "found", len(unique))
	return unique, nil
}

// FetchProperties returns the dataset properties of urn, or nil when the
// entity has none.
func (r *Resolver) FetchProperties(ctx context.Context, urn string) (*core.EntityProperties, error) {
	props, err := r.catalog.GetDatasetProperties(ctx, urn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch properties of %s: %w", urn, err)
	}
	return props, nil
}

// Resolve maps changed nodes to catalog URNs.
// URNs without a dbt_unique_id property, or whose id is not among nodes, are
// dropped. When several URNs carry the same id the first one wins.
// The result is in search order.
func (r *Resolver) Resolve(ctx context.Context, nodes []core.ChangedNode) ([]Resolution, error) {
	byID := make(map[string]core.ChangedNode, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.UniqueID]; dup {
			continue
		}
		byID[n.UniqueID] = n
		ids = append(ids, n.UniqueID)
	}

	urns, err := r.ResolveURNs(ctx, ids)
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]string, len(urns))
	resolutions := make([]Resolution, 0, len(urns))
	for _, urn := range urns {
		props, err := r.FetchProperties(ctx, urn)
		if err != nil {
			return nil, err
		}

		id, ok := props.DBTUniqueID()
		if !ok {
			r.logger.Debug("dropping urn without dbt_unique_id", "urn", urn)
			continue
		}
		node, ok := byID[id]
		if !ok {
			r.logger.Debug("dropping urn for unrequested dbt node", "urn", urn, "dbt_unique_id", id)
			continue
		}
		if first, dup := claimed[id]; dup {
			r.logger.Warn("multiple datasets share a dbt_unique_id, keeping the first",
				"dbt_unique_id", id, "kept", first, "dropped", urn)
			continue
		}

		claimed[id] = urn
		resolutions = append(resolutions, Resolution{URN: urn, Node: node})
	}
	return resolutions, nil
}
