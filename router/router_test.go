package router

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/filter"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/sink"
	"github.com/signaltap/signaltap/store"
	"github.com/signaltap/signaltap/value"
)

func startRouter(t *testing.T, st *store.MetadataOnlyStore) (*Router, context.Context, context.CancelFunc) {
	t.Helper()
	r, err := New(st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	return r, ctx, cancel
}

func TestReplayPrecedesLiveMessages(t *testing.T) {
	st := store.New()
	r, ctx, cancel := startRouter(t, st)
	defer cancel()

	segID := uuid.Must(uuid.NewV7())
	r.Ingress() <- &ipc.MessageWithId{SegmentID: segID, SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}
	r.Ingress() <- &ipc.MessageWithId{SegmentID: segID, SourceName: "src", Msg: ipc.TraceEventSchema{Name: "hello", Fields: []ipc.EventField{{Name: "sig", DataType: value.Int32}}}}

	// Barrier sink: once it has seen N messages, every forward() call up to
	// and including the Nth has fully completed (the router is single-writer).
	// Start and Schema reach it either in its replay (if the router already
	// processed them) or live, never both, so the two together always make 2.
	barrierDone := make(chan struct{})
	barrier := sink.NewBlockingAllSink(8, barrierDone)
	barrierReplay, err := r.Subscribe(ctx, barrier)
	if err != nil {
		t.Fatalf("Subscribe barrier: %v", err)
	}
	for i := len(barrierReplay); i < 2; i++ {
		<-barrier.Messages() // Start and/or Schema, whichever were not replayed
	}

	for i := 0; i < 100; i++ {
		r.Ingress() <- &ipc.MessageWithId{SegmentID: segID, SourceName: "src", Msg: ipc.TraceEvent{TimeNs: int64(i), Name: "hello", Fields: map[string]value.Value{"sig": value.Int32Value(int32(i))}}}
	}
	for i := 0; i < 100; i++ {
		<-barrier.Messages()
	}

	done := make(chan struct{})
	real := sink.NewBlockingAllSink(8, done)
	replay, err := r.Subscribe(ctx, real)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if len(replay) != 2 {
		t.Fatalf("expected replay of [Start, Schema], got %d messages", len(replay))
	}
	if _, ok := replay[0].Msg.(ipc.TraceSegmentStart); !ok {
		t.Fatalf("replay[0] should be Start, got %T", replay[0].Msg)
	}
	if _, ok := replay[1].Msg.(ipc.TraceEventSchema); !ok {
		t.Fatalf("replay[1] should be Schema, got %T", replay[1].Msg)
	}

	select {
	case msg := <-real.Messages():
		t.Fatalf("new subscriber should see zero of the 100 past events, got %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFanoutExclusiveByFilter(t *testing.T) {
	st := store.New()
	r, ctx, cancel := startRouter(t, st)
	defer cancel()

	doneA, doneB := make(chan struct{}), make(chan struct{})
	sinkA := sink.NewFilteredSink(32, doneA)
	sinkB := sink.NewFilteredSink(32, doneB)

	motorFilter, err := filter.Parse("*/motor/*")
	if err != nil {
		t.Fatal(err)
	}
	batteryFilter, err := filter.Parse("*/battery/*")
	if err != nil {
		t.Fatal(err)
	}
	sinkA.Subscribe(motorFilter)
	sinkB.Subscribe(batteryFilter)

	if _, err := r.Subscribe(ctx, sinkA); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Subscribe(ctx, sinkB); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		r.Ingress() <- &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "motor", Msg: ipc.TraceEvent{TimeNs: int64(i), Name: "tick", Fields: map[string]value.Value{"i": value.Int32Value(int32(i))}}}
		r.Ingress() <- &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "battery", Msg: ipc.TraceEvent{TimeNs: int64(i), Name: "tick", Fields: map[string]value.Value{"i": value.Int32Value(int32(i))}}}
	}

	for i := 0; i < 10; i++ {
		msg := <-sinkA.Messages()
		ev := msg.Msg.(ipc.TraceEvent)
		if msg.SourceName != "motor" {
			t.Fatalf("sinkA received non-motor message: %s", msg.SourceName)
		}
		want, _ := ev.Fields["i"].AsInt32()
		if want != int32(i) {
			t.Fatalf("sinkA out-of-order: got %d want %d", want, i)
		}
	}
	for i := 0; i < 10; i++ {
		msg := <-sinkB.Messages()
		if msg.SourceName != "battery" {
			t.Fatalf("sinkB received non-battery message: %s", msg.SourceName)
		}
	}
}

func TestEvictsDeadSink(t *testing.T) {
	st := store.New()
	r, ctx, cancel := startRouter(t, st)
	defer cancel()

	done := make(chan struct{})
	dead := sink.NewBlockingAllSink(0, done)
	if _, err := r.Subscribe(ctx, dead); err != nil {
		t.Fatal(err)
	}
	close(done) // simulate receiver gone

	alive := sink.NewBlockingAllSink(4, make(chan struct{}))
	if _, err := r.Subscribe(ctx, alive); err != nil {
		t.Fatal(err)
	}

	r.Ingress() <- &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}

	select {
	case <-alive.Messages():
	case <-time.After(time.Second):
		t.Fatalf("alive sink never received the message; dead sink may have wedged the router")
	}
}
