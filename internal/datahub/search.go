package datahub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

var _ core.Catalog = (*Client)(nil)

// restliHeaders selects the Rest.li protocol version GMS expects.
var restliHeaders = map[string]string{"X-RestLi-Protocol-Version": "2.0.0"}

type searchResponse struct {
	Value struct {
		NumEntities int `json:"numEntities"`
		Entities    []struct {
			Entity string `json:"entity"`
		} `json:"entities"`
	} `json:"value"`
}

// Search implements core.Catalog using the entities?action=search endpoint.
func (c *Client) Search(ctx context.Context, req core.SearchRequest) ([]string, error) {
	data, err := c.do(ctx, http.MethodPost, "/entities?action=search", req, restliHeaders)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	urns := make([]string, 0, len(resp.Value.Entities))
	for _, e := range resp.Value.Entities {
		urns = append(urns, e.Entity)
	}

	if resp.Value.NumEntities > len(urns) {
		c.logger.Warn("search matched more entities than were returned",
			"matched", resp.Value.NumEntities,
			"returned", len(urns),
		)
	}
	return urns, nil
}
