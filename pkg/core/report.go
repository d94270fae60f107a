package core

// ImpactReport is the outcome of one impact analysis run, ready to render.
type ImpactReport struct {
	// ChangedNodes is every node the change detector reported.
	ChangedNodes []ChangedNode
	// Sections holds one entry per resolved node, in resolution order.
	Sections []Section
	// Unresolved lists changed nodes that matched no catalog entity.
	Unresolved []ChangedNode
}

// Section is the impact of a single changed node.
type Section struct {
	Node        ChangedNode
	URN         string
	Downstreams []DownstreamEntity
}

// ImpactedURNs returns the distinct downstream URNs across all sections.
func (r *ImpactReport) ImpactedURNs() map[string]struct{} {
	urns := make(map[string]struct{})
	for _, s := range r.Sections {
		for _, d := range s.Downstreams {
			urns[d.URN] = struct{}{}
		}
	}
	return urns
}
