// Package store defines the pluggable state-keeper contract the router uses
// on every ingress message, and the default metadata-only implementation.
// Grounded on _examples/original_source/crates/zelos-trace/src/store.rs.
package store

import (
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/metadata"
)

// Store is the contract the router drives. Richer implementations (the
// storex/* adapters) may additionally persist events, but must still
// produce a correct replay stream from MetadataAsIPC.
type Store interface {
	MetadataAsIPC() ([]ipc.MessageWithId, error)
	Update(msg *ipc.MessageWithId) error
}

// MetadataOnlyStore is the default Store: it delegates entirely to a
// metadata.Index and keeps no event history.
type MetadataOnlyStore struct {
	Index *metadata.Index
}

// New returns a MetadataOnlyStore backed by a fresh metadata index.
func New() *MetadataOnlyStore {
	return &MetadataOnlyStore{Index: metadata.New()}
}

func (s *MetadataOnlyStore) MetadataAsIPC() ([]ipc.MessageWithId, error) {
	return s.Index.AsIPC()
}

func (s *MetadataOnlyStore) Update(msg *ipc.MessageWithId) error {
	return s.Index.Update(msg)
}
