package core

import (
	"fmt"
	"net/url"
	"strings"
)

// EncodeURN percent-encodes a URN for use as a single URL path segment.
// Everything except ALPHA / DIGIT / "-" / "_" / "." / "~" is escaped, so the
// result never contains '/', ':' or ','.
func EncodeURN(urn string) string {
	return strings.ReplaceAll(url.QueryEscape(urn), "+", "%20")
}

// URNEntityType returns the entity type segment of a URN, e.g. "dataset" for
// "urn:li:dataset:(...)".
func URNEntityType(urn string) (string, error) {
	parts := strings.SplitN(urn, ":", 4)
	if len(parts) < 4 || parts[0] != "urn" || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("malformed urn %q", urn)
	}
	return parts[2], nil
}
