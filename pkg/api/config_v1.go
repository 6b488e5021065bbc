// pkg/api/config_v1.go
package api

// ConfigV1 describes the comparison a server or run was built for.
type ConfigV1 struct {
	ChunkSize      int        `json:"chunk_size"`
	MaxDifferences int        `json:"max_differences"`
	PartSize       int        `json:"part_size"`
	Query          GenomeV1   `json:"query"`
	Targets        []GenomeV1 `json:"targets"`
}

// GenomeV1 names one input genome.
type GenomeV1 struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Length int    `json:"length,omitempty"`
}
