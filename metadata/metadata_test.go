package metadata

import (
	"testing"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

func TestUpdateIdempotent(t *testing.T) {
	idx := New()
	id := uuid.Must(uuid.NewV7())
	msg := &ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 100, SourceName: "src"}}

	if err := idx.Update(msg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	once := idx.Get(id)

	if err := idx.Update(msg); err != nil {
		t.Fatalf("Update (second): %v", err)
	}
	twice := idx.Get(id)

	if *once.StartTime != *twice.StartTime {
		t.Fatalf("repeated update changed StartTime: %d vs %d", *once.StartTime, *twice.StartTime)
	}
}

func TestSnapshotIsolatedFromWriters(t *testing.T) {
	idx := New()
	id := uuid.Must(uuid.NewV7())
	idx.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}})

	snap := idx.Snapshot()
	idx.Update(&ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "other", Msg: ipc.TraceSegmentStart{TimeNs: 2, SourceName: "other"}})

	if len(snap) != 1 {
		t.Fatalf("snapshot mutated after later Update: len=%d, want 1", len(snap))
	}
}

func TestTraceEventNeverMutatesMetadata(t *testing.T) {
	idx := New()
	id := uuid.Must(uuid.NewV7())
	start := &ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}
	idx.Update(start)

	before := idx.Get(id)
	idx.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceEvent{TimeNs: 2, Name: "hello", Fields: map[string]value.Value{"x": value.Int32Value(1)}}})
	after := idx.Get(id)

	if before != after {
		t.Fatalf("TraceEvent must not change segment metadata identity")
	}
}

func TestAsIPCReplayThenFromEmpty(t *testing.T) {
	idx := New()
	id := uuid.Must(uuid.NewV7())
	idx.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}})
	idx.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceEventSchema{
		Name: "hello", Fields: []ipc.EventField{{Name: "sig", DataType: value.Int32}},
	}})

	replay, err := idx.AsIPC()
	if err != nil {
		t.Fatalf("AsIPC: %v", err)
	}

	replayed := New()
	for i := range replay {
		if err := replayed.Update(&replay[i]); err != nil {
			t.Fatalf("Update during replay: %v", err)
		}
	}

	orig := idx.Get(id)
	got := replayed.Get(id)
	if *orig.StartTime != *got.StartTime {
		t.Fatalf("replayed StartTime mismatch: %d vs %d", *orig.StartTime, *got.StartTime)
	}
	if got.Schema("hello") == nil {
		t.Fatalf("replayed segment missing hello schema")
	}
}

func TestRemove(t *testing.T) {
	idx := New()
	id := uuid.Must(uuid.NewV7())
	idx.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}})

	idx.Remove(id)
	if idx.Get(id) != nil {
		t.Fatalf("segment should be gone after Remove")
	}
}
