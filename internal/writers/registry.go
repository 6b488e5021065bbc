// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"genomecmp/internal/output"
	"genomecmp/pkg/api"
)

// StateWriter renders one final snapshot.
type StateWriter func(w io.Writer, v api.StateV1, header bool) error

var stateWriters = map[string]StateWriter{}

func init() {
	RegisterState("text", output.WriteText)
	RegisterState("json", func(w io.Writer, v api.StateV1, _ bool) error { return output.WriteJSON(w, v) })
}

// RegisterState adds or replaces the writer for format.
func RegisterState(format string, fn StateWriter) { stateWriters[format] = fn }

// Formats lists registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(stateWriters))
	for k := range stateWriters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WriteState dispatches to the writer registered for format. Broken pipes
// are reported as success.
func WriteState(format string, w io.Writer, v api.StateV1, header bool) error {
	fn, ok := stateWriters[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	if err := fn(w, v, header); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}
