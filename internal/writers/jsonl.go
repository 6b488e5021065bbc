// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"genomecmp/internal/jsonlutil"
	"genomecmp/pkg/api"
)

// StartProgressWriter streams each snapshot as one JSON line (v1),
// flushing after every line so followers see progress live.
func StartProgressWriter(out io.Writer, bufSize int) (chan<- api.StateV1, <-chan error) {
	return jsonlutil.Start[api.StateV1](out, bufSize, true,
		func(enc *json.Encoder, v api.StateV1) error {
			return enc.Encode(v)
		},
		IsBrokenPipe,
	)
}
