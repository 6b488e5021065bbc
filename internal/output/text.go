// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"genomecmp/pkg/api"
)

// WriteText prints the header and one row per category, then the total.
func WriteText(w io.Writer, v api.StateV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for _, c := range v.Categories {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\n", c.Key, c.Label, c.Count, Fraction(c.Count, v.Total)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total\tTotal\t%d\t%.4f\n", v.Total, Fraction(v.Total, v.Total))
	return err
}

// Fraction returns n/total, or 0 when nothing was recorded.
func Fraction(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
