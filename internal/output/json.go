// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"genomecmp/internal/simulation"
	"genomecmp/pkg/api"
)

// Names carries the display names used to label categories.
type Names struct {
	Query   string
	Targets []string
}

// ToAPIState converts a snapshot to the stable wire schema (v1).
func ToAPIState(st simulation.State, names Names, running bool) api.StateV1 {
	rows := st.Labels(names.Query, names.Targets)
	v := api.StateV1{
		Counts:     make(map[string]uint64, len(rows)),
		Categories: make([]api.CategoryV1, 0, len(rows)),
		Total:      st.Total,
		Running:    running,
	}
	for _, r := range rows {
		key := r.Category.String()
		v.Counts[key] = r.Count
		v.Categories = append(v.Categories, api.CategoryV1{Key: key, Label: r.Label, Count: r.Count})
	}
	return v
}

// WriteJSON writes one v1 state (pretty-indented).
func WriteJSON(w io.Writer, v api.StateV1) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
