package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/signaltap/signaltap/ipc"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
}

func (f *fakeProducer) Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	promise(r, nil)
}

func (f *fakeProducer) last() *kgo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[len(f.records)-1]
}

func TestSinkSendAsyncProducesKeyedRecord(t *testing.T) {
	fp := &fakeProducer{}
	s := newSink(fp, "signaltap.traces")

	id := uuid.Must(uuid.NewV7())
	msg := &ipc.MessageWithId{
		SegmentID:  id,
		SourceName: "motor",
		Msg:        ipc.TraceSegmentStart{TimeNs: 1, SourceName: "motor"},
	}

	if err := s.SendAsync(context.Background(), msg); err != nil {
		t.Fatalf("SendAsync: %v", err)
	}

	rec := fp.last()
	if rec.Topic != "signaltap.traces" {
		t.Errorf("Topic = %q, want %q", rec.Topic, "signaltap.traces")
	}
	if string(rec.Key) != string(id[:]) {
		t.Errorf("Key = %x, want %x", rec.Key, id[:])
	}
	if len(rec.Value) == 0 {
		t.Errorf("expected non-empty marshaled value")
	}
}

func TestSinkSendAsyncRejectsUnconvertibleMessage(t *testing.T) {
	fp := &fakeProducer{}
	s := newSink(fp, "signaltap.traces")

	// A zero-value MessageWithId has a nil Msg, which wire.MessageToWire
	// rejects outright.
	err := s.SendAsync(context.Background(), &ipc.MessageWithId{})
	if err == nil {
		t.Fatalf("expected an error for a message with no payload set")
	}
}
