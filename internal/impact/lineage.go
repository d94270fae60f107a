package impact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// DefaultMaxDownstreams caps the downstream entities requested per URN.
// The query is never paginated past it.
const DefaultMaxDownstreams = 1000

// DownstreamQuery selects downstream lineage with the fields the report renders.
const DownstreamQuery = `query GetLineage($urn: String!, $count: Int!) {
  searchAcrossLineage(
    input: {
      urn: $urn,
      direction: DOWNSTREAM,
      count: $count,
    }
  ) {
    searchResults {
      entity {
        urn
        type
        ... on Dataset {
          properties {
            name
          }
          platform {
            name
            properties {
              displayName
            }
          }
          subTypes {
            typeNames
          }
          siblings {
            isPrimary
          }
        }
        ... on Chart {
          properties {
            name
          }
          platform {
            name
            properties {
              displayName
            }
          }
        }
        ... on Dashboard {
          properties {
            name
          }
          platform {
            name
            properties {
              displayName
            }
          }
        }
        ... on DataFlow {
          properties {
            name
          }
          platform {
            name
            properties {
              displayName
            }
          }
        }
        ... on DataJob {
          properties {
            name
          }
        }
      }
      degree
    }
  }
}
`

type lineageResponse struct {
	SearchAcrossLineage struct {
		SearchResults []struct {
			Entity core.DownstreamEntity `json:"entity"`
			Degree int                   `json:"degree"`
		} `json:"searchResults"`
	} `json:"searchAcrossLineage"`
}

// LineageFetcher queries the downstream consumers of catalog entities.
type LineageFetcher struct {
	catalog  core.Catalog
	maxCount int
	logger   *slog.Logger
}

// NewLineageFetcher creates a fetcher. maxCount <= 0 uses DefaultMaxDownstreams.
func NewLineageFetcher(catalog core.Catalog, maxCount int, logger *slog.Logger) *LineageFetcher {
	if maxCount <= 0 {
		maxCount = DefaultMaxDownstreams
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LineageFetcher{catalog: catalog, maxCount: maxCount, logger: logger}
}

// FetchDownstream returns the downstream entities of urn in the order the
// catalog returned them. Entities explicitly marked as non-primary siblings
// are dropped. Results are not sorted by degree.
func (f *LineageFetcher) FetchDownstream(ctx context.Context, urn string) ([]core.DownstreamEntity, error) {
	var resp lineageResponse
	vars := map[string]any{"urn": urn, "count": f.maxCount}
	if err := f.catalog.ExecuteGraphQL(ctx, DownstreamQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch downstream lineage of %s: %w", urn, err)
	}

	results := resp.SearchAcrossLineage.SearchResults
	downstreams := make([]core.DownstreamEntity, 0, len(results))
	for _, r := range results {
		if r.Entity.IsNonPrimarySibling() {
			continue
		}
		e := r.Entity
		e.Degree = r.Degree
		downstreams = append(downstreams, e)
	}

	if len(results) >= f.maxCount {
		f.logger.Warn("downstream lineage hit its result limit", "urn", urn, "limit", f.maxCount)
	}
	f.logger.Info("fetched downstream lineage", "urn", urn, "downstreams", len(downstreams))
	return downstreams, nil
}
