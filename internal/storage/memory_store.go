package storage

import "github.com/julianstephens/tracklit/internal/constants"

// NewMemoryStore returns a JSONStore that never touches disk. Data lives for
// the lifetime of the process.
func NewMemoryStore() *JSONStore {
	return &JSONStore{path: constants.MemoryStorePath, memory: true}
}
