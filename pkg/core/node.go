package core

// DBTUniqueIDProperty is the custom property DataHub stores the originating
// dbt unique_id under.
const DBTUniqueIDProperty = "dbt_unique_id"

// ChangedNode is a dbt node that differs from the baseline state.
type ChangedNode struct {
	UniqueID         string `json:"unique_id"`
	OriginalFilePath string `json:"original_file_path"`
}

// EntityProperties holds the datasetProperties aspect of a catalog entity.
type EntityProperties struct {
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

// DBTUniqueID returns the dbt unique_id recorded on the entity, if any.
func (p *EntityProperties) DBTUniqueID() (string, bool) {
	if p == nil || p.CustomProperties == nil {
		return "", false
	}
	id, ok := p.CustomProperties[DBTUniqueIDProperty]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
