package datahub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// datasetPropertiesClass is the fully qualified aspect type in GMS responses.
const datasetPropertiesClass = "com.linkedin.dataset.DatasetProperties"

type aspectResponse struct {
	Aspect map[string]json.RawMessage `json:"aspect"`
}

// GetDatasetProperties implements core.Catalog. A 404 means the entity has
// no datasetProperties aspect and yields nil, nil.
func (c *Client) GetDatasetProperties(ctx context.Context, urn string) (*core.EntityProperties, error) {
	path := "/aspects/" + core.EncodeURN(urn) + "?aspect=datasetProperties&version=0"

	data, err := c.do(ctx, http.MethodGet, path, nil, restliHeaders)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch datasetProperties for %s: %w", urn, err)
	}

	var resp aspectResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode aspect response for %s: %w", urn, err)
	}

	raw, ok := resp.Aspect[datasetPropertiesClass]
	if !ok {
		return nil, nil
	}

	var props core.EntityProperties
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("failed to decode datasetProperties for %s: %w", urn, err)
	}
	return &props, nil
}
