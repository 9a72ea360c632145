package badger

import (
	"fmt"

	"github.com/poiesic/coursegraph/core"
)

// Key prefixes for different data types
const (
	conceptRecordPrefix = "conrec"
	conceptNamePrefix   = "connam"
	indexMetaKey        = "vecidx:meta"
)

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conceptRecordPrefix, id))
}

// makeConceptNameKey generates a key for the name index.
// Format: prefix:name
func makeConceptNameKey(name string) []byte {
	prefix := conceptNamePrefix + ":"
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, []byte(prefix))
	copy(buf[offset:], []byte(name))
	return buf
}

// makeIndexMetaKey generates the key holding vector index metadata.
func makeIndexMetaKey() []byte {
	return []byte(indexMetaKey)
}
