package impact

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapimpact/internal/testutil"
	"github.com/leapstack-labs/leapimpact/pkg/core"
)

func TestAnalyzer_Run(t *testing.T) {
	changes := &fakeChanges{nodes: []core.ChangedNode{
		{UniqueID: "model.a.orders", OriginalFilePath: "models/orders.sql"},
		{UniqueID: "model.a.customers", OriginalFilePath: "models/customers.sql"},
		{UniqueID: "model.a.new_model", OriginalFilePath: "models/new_model.sql"},
	}}

	cat := newFakeCatalog()
	cat.addDataset("urn:li:dataset:orders", "model.a.orders")
	cat.addDataset("urn:li:dataset:customers", "model.a.customers")
	cat.lineage["urn:li:dataset:orders"] = []map[string]any{
		lineageResult("urn:li:dataset:revenue", "DATASET", "revenue", 1, nil),
		lineageResult("urn:li:chart:(looker,1)", "CHART", "Revenue", 2, nil),
	}
	cat.lineage["urn:li:dataset:customers"] = []map[string]any{
		lineageResult("urn:li:dataset:revenue", "DATASET", "revenue", 1, nil),
	}

	a := NewAnalyzer(changes, cat, Config{StateRef: "prod-artifacts", Logger: testutil.NewTestLogger(t)})
	report, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "prod-artifacts", changes.stateRef)
	assert.Equal(t, changes.nodes, report.ChangedNodes)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, "urn:li:dataset:orders", report.Sections[0].URN)
	assert.Equal(t, "models/orders.sql", report.Sections[0].Node.OriginalFilePath)
	assert.Len(t, report.Sections[0].Downstreams, 2)
	assert.Equal(t, "urn:li:dataset:customers", report.Sections[1].URN)
	assert.Len(t, report.ImpactedURNs(), 2)
	assert.Equal(t, []core.ChangedNode{changes.nodes[2]}, report.Unresolved)
}

func TestAnalyzer_NoChanges(t *testing.T) {
	cat := newFakeCatalog()
	a := NewAnalyzer(&fakeChanges{nodes: []core.ChangedNode{}}, cat, Config{StateRef: "s"})

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Sections)
	assert.Empty(t, cat.searches)
	assert.Empty(t, cat.graphQLCalls)
}

func TestAnalyzer_FailsFast(t *testing.T) {
	t.Run("change detection", func(t *testing.T) {
		cat := newFakeCatalog()
		changes := &fakeChanges{err: &core.ConfigError{Key: "DBT_ARTIFACT_STATE_PATH", Message: "must be set"}}

		_, err := NewAnalyzer(changes, cat, Config{}).Run(context.Background())

		var cfgErr *core.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, cat.searches)
	})

	t.Run("lineage", func(t *testing.T) {
		cat := newFakeCatalog()
		cat.addDataset("urn:li:dataset:a", "model.a.a")
		cat.addDataset("urn:li:dataset:b", "model.a.b")
		cat.lineageErr = errUnavailable
		changes := &fakeChanges{nodes: []core.ChangedNode{{UniqueID: "model.a.a"}, {UniqueID: "model.a.b"}}}

		report, err := NewAnalyzer(changes, cat, Config{StateRef: "s"}).Run(context.Background())
		assert.ErrorIs(t, err, errUnavailable)
		assert.Nil(t, report)
		assert.Len(t, cat.graphQLCalls, 1, "the run must stop at the first failed query")
	})
}

func TestAnalyzer_ConcurrentLineageKeepsOrder(t *testing.T) {
	cat := newFakeCatalog()
	var nodes []core.ChangedNode
	for i := range 6 {
		id := fmt.Sprintf("model.a.m%d", i)
		urn := fmt.Sprintf("urn:li:dataset:m%d", i)
		cat.addDataset(urn, id)
		cat.lineage[urn] = []map[string]any{
			lineageResult(fmt.Sprintf("urn:li:dataset:down%d", i), "DATASET", "down", 1, nil),
		}
		nodes = append(nodes, core.ChangedNode{UniqueID: id})
	}

	a := NewAnalyzer(&fakeChanges{nodes: nodes}, cat, Config{StateRef: "s", LineageConcurrency: 3})
	report, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Sections, 6)
	for i, s := range report.Sections {
		assert.Equal(t, fmt.Sprintf("urn:li:dataset:m%d", i), s.URN)
		require.Len(t, s.Downstreams, 1)
		assert.Equal(t, fmt.Sprintf("urn:li:dataset:down%d", i), s.Downstreams[0].URN)
	}
	assert.Len(t, cat.graphQLCalls, 6)
}
