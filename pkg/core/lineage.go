package core

import (
	"bytes"
	"encoding/json"
)

// DownstreamEntity is one entity returned by a downstream lineage search.
// Optional parts of the GraphQL response are pointers so that an absent
// object can be told apart from an empty one.
type DownstreamEntity struct {
	URN        string           `json:"urn"`
	Type       string           `json:"type"`
	Properties *EntityNameProps `json:"properties,omitempty"`
	Platform   *Platform        `json:"platform,omitempty"`
	SubTypes   *SubTypes        `json:"subTypes,omitempty"`
	Siblings   *Siblings        `json:"siblings,omitempty"`
	Degree     int              `json:"degree"`
}

// EntityNameProps is the properties block selected for a downstream entity.
type EntityNameProps struct {
	Name string `json:"name"`
}

// Platform identifies the data platform an entity lives on.
type Platform struct {
	Name       string              `json:"name"`
	Properties *PlatformProperties `json:"properties,omitempty"`
}

// PlatformProperties carries the human readable platform name.
type PlatformProperties struct {
	DisplayName string `json:"displayName"`
}

// SubTypes lists the entity's subtype names, most specific first.
type SubTypes struct {
	TypeNames []string `json:"typeNames"`
}

// Siblings describes whether the entity is the primary record among its siblings.
// IsPrimary is kept raw so that an unexpected value never fails decoding.
type Siblings struct {
	IsPrimary json.RawMessage `json:"isPrimary,omitempty"`
}

// Name returns the entity's display name, falling back to its URN.
func (e DownstreamEntity) Name() string {
	if e.Properties != nil && e.Properties.Name != "" {
		return e.Properties.Name
	}
	return e.URN
}

// PlatformName prefers the platform's display name over its system name.
func (e DownstreamEntity) PlatformName() string {
	if e.Platform == nil {
		return ""
	}
	if e.Platform.Properties != nil && e.Platform.Properties.DisplayName != "" {
		return e.Platform.Properties.DisplayName
	}
	return e.Platform.Name
}

// FirstSubType returns the first subtype name when one is present.
func (e DownstreamEntity) FirstSubType() (string, bool) {
	if e.SubTypes == nil || len(e.SubTypes.TypeNames) == 0 {
		return "", false
	}
	return e.SubTypes.TypeNames[0], true
}

// IsNonPrimarySibling reports whether the entity is explicitly marked as a
// non-primary sibling. Only a literal false excludes; missing, null or
// non-boolean values count as primary.
func (e DownstreamEntity) IsNonPrimarySibling() bool {
	return e.Siblings != nil && bytes.Equal(bytes.TrimSpace(e.Siblings.IsPrimary), []byte("false"))
}
