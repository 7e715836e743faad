package edward

import (
	"fmt"
	"sync/atomic"
)

var nameSerial uint64

// NextName appends an _ followed by a process-unique generation number
// to name. Every call returns a distinct string, so nodes created from
// structurally identical expressions never share a name.
func NextName(name string) string {
	return fmt.Sprintf("%v_%v", name, atomic.AddUint64(&nameSerial, 1))
}

// NextSerial returns a process-unique generation number. Sampling ops
// mix it into their hash so that repeated draws of the same
// distribution are never deduplicated by the expression graph.
func NextSerial() uint64 {
	return atomic.AddUint64(&nameSerial, 1)
}
