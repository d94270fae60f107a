package core

import "context"

// Catalog is the subset of the metadata catalog API used by the impact analysis.
type Catalog interface {
	// Search runs a filtered entity search and returns the matching URNs
	// in the order the catalog ranked them.
	Search(ctx context.Context, req SearchRequest) ([]string, error)

	// GetDatasetProperties fetches the datasetProperties aspect of an entity.
	// It returns nil, nil when the entity has no such aspect.
	GetDatasetProperties(ctx context.Context, urn string) (*EntityProperties, error)

	// ExecuteGraphQL runs a GraphQL query and decodes its data field into out.
	ExecuteGraphQL(ctx context.Context, query string, variables map[string]any, out any) error
}

// SearchRequest is the body of a catalog entity search.
type SearchRequest struct {
	Input  string       `json:"input"`
	Entity string       `json:"entity"`
	Start  int          `json:"start"`
	Count  int          `json:"count"`
	Filter SearchFilter `json:"filter"`
}

// SearchFilter is a disjunction of conjunctive criterion groups.
type SearchFilter struct {
	Or []CriterionGroup `json:"or"`
}

// CriterionGroup holds criteria that must all match.
type CriterionGroup struct {
	And []Criterion `json:"and"`
}

// Criterion is a single field condition.
type Criterion struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	Condition string `json:"condition"`
}

// ConditionEqual is the exact-match search condition.
const ConditionEqual = "EQUAL"
