// pkg/api/state_v1.go
package api

// StateV1 is the stable JSON schema for a counter snapshot.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type StateV1 struct {
	Counts     map[string]uint64 `json:"counts"` // category key -> count
	Categories []CategoryV1      `json:"categories"`
	Total      uint64            `json:"total"`
	Running    bool              `json:"running,omitempty"`
}

// CategoryV1 is one labeled counter, in display order.
type CategoryV1 struct {
	Key   string `json:"key"`   // "query_only", "target1_target2", ...
	Label string `json:"label"` // "Human only", "Human-Bonobo", ...
	Count uint64 `json:"count"`
}
