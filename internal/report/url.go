package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// ErrMalformedURN is returned for URNs whose entity type cannot be read.
var ErrMalformedURN = errors.New("malformed urn")

// LineageSuffix opens the lineage tab of an entity page.
const LineageSuffix = "Lineage"

// routeOverrides maps entity types to the frontend route that serves them.
var routeOverrides = map[string]string{
	"dataJob":  "tasks",
	"dataFlow": "pipelines",
}

// EntityURL returns the DataHub frontend URL of urn. A non-empty suffix is
// appended as an extra path segment.
func EntityURL(frontendURL, urn, suffix string) (string, error) {
	entityType, err := core.URNEntityType(urn)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedURN, urn)
	}
	if route, ok := routeOverrides[entityType]; ok {
		entityType = route
	}

	u := strings.TrimRight(frontendURL, "/") + "/" + entityType + "/" + core.EncodeURN(urn)
	if suffix != "" {
		u += "/" + strings.TrimLeft(suffix, "/")
	}
	return u, nil
}
