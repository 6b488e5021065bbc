package output

import (
	"genomecmp/internal/config"
	"genomecmp/pkg/api"
)

// ToAPIConfig describes cfg on the wire. lengths, when non-nil, carries
// encoded sequence lengths keyed by genome name.
func ToAPIConfig(cfg *config.Config, lengths map[string]int) api.ConfigV1 {
	v := api.ConfigV1{
		ChunkSize:      cfg.ChunkSize,
		MaxDifferences: cfg.MaxDifferences,
		PartSize:       cfg.Params().PartSize(),
		Query:          api.GenomeV1{Name: cfg.Query.Name, Path: cfg.Query.Path, Length: lengths[cfg.Query.Name]},
		Targets:        make([]api.GenomeV1, 0, len(cfg.Targets)),
	}
	for _, t := range cfg.Targets {
		v.Targets = append(v.Targets, api.GenomeV1{Name: t.Name, Path: t.Path, Length: lengths[t.Name]})
	}
	return v
}

// NamesOf returns the category labels for cfg.
func NamesOf(cfg *config.Config) Names {
	n := Names{Query: cfg.Query.Name}
	for _, t := range cfg.Targets {
		n.Targets = append(n.Targets, t.Name)
	}
	return n
}
