package u

import (
	"io"
)

const maxDrainBytes = 64 * 1024

// DumpAndCloseStream discards a little of what's left in r so the connection
// can be reused, then closes it.
func DumpAndCloseStream(r io.ReadCloser) {
	if r == nil {
		return // nothing to dump or close
	}
	_, _ = io.CopyN(io.Discard, r, maxDrainBytes)
	_ = r.Close()
}
