package store

import (
	"testing"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/ipc"
)

func TestMetadataOnlyStoreRoundtrip(t *testing.T) {
	s := New()
	id := uuid.Must(uuid.NewV7())

	if err := s.Update(&ipc.MessageWithId{SegmentID: id, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 10, SourceName: "src"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	out, err := s.MetadataAsIPC()
	if err != nil {
		t.Fatalf("MetadataAsIPC: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 replay message, got %d", len(out))
	}
	if _, ok := out[0].Msg.(ipc.TraceSegmentStart); !ok {
		t.Fatalf("expected TraceSegmentStart, got %T", out[0].Msg)
	}
}
