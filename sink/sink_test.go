package sink

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/filter"
	"github.com/signaltap/signaltap/ipc"
)

func testMsg() *ipc.MessageWithId {
	return &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}
}

func TestBlockingAllSinkDeliversInOrder(t *testing.T) {
	done := make(chan struct{})
	s := NewBlockingAllSink(2, done)
	ctx := context.Background()

	m1, m2 := testMsg(), testMsg()
	if err := s.SendAsync(ctx, m1); err != nil {
		t.Fatalf("send 1: %v", err)
	}
	if err := s.SendAsync(ctx, m2); err != nil {
		t.Fatalf("send 2: %v", err)
	}

	if got := <-s.Messages(); got != m1 {
		t.Fatalf("expected m1 first")
	}
	if got := <-s.Messages(); got != m2 {
		t.Fatalf("expected m2 second")
	}
}

func TestBlockingAllSinkBackpressure(t *testing.T) {
	done := make(chan struct{})
	s := NewBlockingAllSink(1, done)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.SendAsync(context.Background(), testMsg()); err != nil {
		t.Fatalf("first send should succeed: %v", err)
	}

	err := s.SendAsync(ctx, testMsg())
	if err == nil {
		t.Fatalf("second send on a full queue should suspend and then fail on ctx timeout")
	}
}

func TestBlockingAllSinkEvictedWhenReceiverGone(t *testing.T) {
	done := make(chan struct{})
	s := NewBlockingAllSink(0, done)
	close(done)

	err := s.SendAsync(context.Background(), testMsg())
	if !IsEvicted(err) {
		t.Fatalf("expected eviction-signaling error, got %v", err)
	}
}

func TestFilteredSinkDropsWithoutBlocking(t *testing.T) {
	done := make(chan struct{})
	s := NewFilteredSink(1, done)
	s.Subscribe(filter.Any())

	if err := s.SendAsync(context.Background(), testMsg()); err != nil {
		t.Fatalf("first send: %v", err)
	}

	done2 := make(chan struct{})
	select {
	case <-done2:
	default:
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.SendAsync(context.Background(), testMsg()) }()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("overflow should be a silent drop, not an error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("SendAsync on a full filtered sink must never block")
	}
}

func TestFilteredSinkUnmatchedIsNotDropCounted(t *testing.T) {
	done := make(chan struct{})
	dropped := 0
	s := NewFilteredSink(1, done, WithOnDrop(func(*ipc.MessageWithId) { dropped++ }))
	name := "only-this-event"
	s.Subscribe(filter.New(nil, nil, &name))

	if err := s.SendAsync(context.Background(), testMsg()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if dropped != 0 {
		t.Fatalf("a non-matching message should not count as dropped, got %d", dropped)
	}
	select {
	case <-s.Messages():
		t.Fatalf("non-matching message should never be enqueued")
	default:
	}
}

func TestFilteredSinkSubscribeUnsubscribe(t *testing.T) {
	done := make(chan struct{})
	s := NewFilteredSink(4, done)

	f, err := filter.Parse("*/motor/*")
	if err != nil {
		t.Fatal(err)
	}
	s.Subscribe(f)
	if !s.matches(&ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "motor", Msg: ipc.TraceEvent{TimeNs: 1, Name: "tick"}}) {
		t.Fatalf("expected match after subscribe")
	}

	s.Unsubscribe(f)
	if s.matches(&ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "motor", Msg: ipc.TraceEvent{TimeNs: 1, Name: "tick"}}) {
		t.Fatalf("expected no match after unsubscribe")
	}
}
