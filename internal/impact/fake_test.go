package impact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// fakeCatalog is an in-memory core.Catalog.
type fakeCatalog struct {
	mu sync.Mutex

	// datasets maps urn -> dbt_unique_id; an empty id stores no property.
	datasets map[string]string
	// order is the search ranking; unset urns are not searchable.
	order []string
	// lineage maps urn -> GraphQL search results.
	lineage map[string][]map[string]any

	searchErr  error
	lineageErr error

	searches      []core.SearchRequest
	aspectCalls   []string
	graphQLCalls  []map[string]any
	missingAspect map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		datasets:      make(map[string]string),
		lineage:       make(map[string][]map[string]any),
		missingAspect: make(map[string]bool),
	}
}

func (f *fakeCatalog) addDataset(urn, dbtID string) {
	f.datasets[urn] = dbtID
	f.order = append(f.order, urn)
}

func (f *fakeCatalog) Search(_ context.Context, req core.SearchRequest) ([]string, error) {
	f.searches = append(f.searches, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	wanted := make(map[string]bool)
	for _, g := range req.Filter.Or {
		for _, c := range g.And {
			wanted[c.Value] = true
		}
	}

	var urns []string
	for _, urn := range f.order {
		if wanted[core.DBTUniqueIDProperty+"="+f.datasets[urn]] {
			urns = append(urns, urn)
		}
	}
	return urns, nil
}

func (f *fakeCatalog) GetDatasetProperties(_ context.Context, urn string) (*core.EntityProperties, error) {
	f.aspectCalls = append(f.aspectCalls, urn)
	if f.missingAspect[urn] {
		return nil, nil
	}
	id, ok := f.datasets[urn]
	if !ok {
		return nil, fmt.Errorf("unknown urn %s", urn)
	}
	props := &core.EntityProperties{CustomProperties: map[string]string{"materialization": "table"}}
	if id != "" {
		props.CustomProperties[core.DBTUniqueIDProperty] = id
	}
	return props, nil
}

func (f *fakeCatalog) ExecuteGraphQL(_ context.Context, _ string, variables map[string]any, out any) error {
	f.mu.Lock()
	f.graphQLCalls = append(f.graphQLCalls, variables)
	f.mu.Unlock()
	if f.lineageErr != nil {
		return f.lineageErr
	}

	urn, _ := variables["urn"].(string)
	results := f.lineage[urn]
	if results == nil {
		results = []map[string]any{}
	}
	data, err := json.Marshal(map[string]any{
		"searchAcrossLineage": map[string]any{"searchResults": results},
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// fakeChanges is a fixed ChangeLister.
type fakeChanges struct {
	nodes []core.ChangedNode
	err   error

	stateRef string
}

func (f *fakeChanges) ChangedNodes(_ context.Context, stateRef string) ([]core.ChangedNode, error) {
	f.stateRef = stateRef
	return f.nodes, f.err
}

var errUnavailable = errors.New("service unavailable")

func lineageResult(urn, entityType, name string, degree int, extra map[string]any) map[string]any {
	entity := map[string]any{
		"urn":        urn,
		"type":       entityType,
		"properties": map[string]any{"name": name},
		"platform":   map[string]any{"name": "snowflake", "properties": map[string]any{"displayName": "Snowflake"}},
	}
	for k, v := range extra {
		entity[k] = v
	}
	return map[string]any{"entity": entity, "degree": degree}
}
