// Package metadata is the concurrent, snapshot-readable index of
// segment_id -> segment metadata described in spec §4.1. Grounded on
// _examples/original_source/crates/zelos-trace/src/metadata.rs, adapted from
// an ArcSwap<persistent-trie> to Go's atomic.Pointer over a copy-on-write map
// (the copy-on-write alternative spec §4.1 names as equivalent).
package metadata

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/segment"
)

type segmentMap = map[uuid.UUID]*segment.Segment

// Index is the concurrent segment metadata store. The zero value is not
// usable; construct with New.
type Index struct {
	ptr atomic.Pointer[segmentMap]
	mu  sync.Mutex // serializes writers; readers never block on it
}

// New returns an empty Index.
func New() *Index {
	idx := &Index{}
	empty := segmentMap{}
	idx.ptr.Store(&empty)
	return idx
}

// Snapshot returns the current map, an O(1) point-in-time view independent
// of concurrent writers: the returned map is never mutated in place, only
// replaced, so it is safe to range over without further synchronization.
func (idx *Index) Snapshot() segmentMap {
	return *idx.ptr.Load()
}

// Get returns the segment for id, or nil if unknown.
func (idx *Index) Get(id uuid.UUID) *segment.Segment {
	return idx.Snapshot()[id]
}

// Iter calls fn for every (segment id, segment) pair in a point-in-time
// snapshot.
func (idx *Index) Iter(fn func(id uuid.UUID, seg *segment.Segment)) {
	for id, seg := range idx.Snapshot() {
		fn(id, seg)
	}
}

// Update merges msg into the segment it references, creating an empty shell
// first if this is the first observation of that segment id. The merge
// itself is idempotent per segment.Segment.Update's invariants.
func (idx *Index) Update(msg *ipc.MessageWithId) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := *idx.ptr.Load()
	seg, ok := old[msg.SegmentID]
	if !ok {
		seg = segment.Empty(msg.SourceName)
	}
	updated := seg.Update(msg.Msg)
	if updated == seg && ok {
		return nil // no-op update (e.g. TraceEvent): avoid an unnecessary copy
	}

	next := make(segmentMap, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[msg.SegmentID] = updated
	idx.ptr.Store(&next)
	return nil
}

// Remove evicts a segment id from the index.
func (idx *Index) Remove(id uuid.UUID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := *idx.ptr.Load()
	if _, ok := old[id]; !ok {
		return
	}
	next := make(segmentMap, len(old))
	for k, v := range old {
		if k != id {
			next[k] = v
		}
	}
	idx.ptr.Store(&next)
}

// AsIPC linearizes the current state of every segment into the replay
// stream described in spec §4.1, one segment's messages after another.
// Segment iteration order is unspecified (map order), matching the
// router-observation-order guarantee spec §4.4 gives across producers.
func (idx *Index) AsIPC() ([]ipc.MessageWithId, error) {
	var out []ipc.MessageWithId
	for id, seg := range idx.Snapshot() {
		for _, m := range seg.AsIPC() {
			out = append(out, ipc.MessageWithId{SegmentID: id, SourceName: seg.SourceName, Msg: m})
		}
	}
	return out, nil
}
