// Package sink implements the two subscriber-side fan-out targets the
// router drives: a backpressure-applying "blocking-all" sink and a
// non-blocking, drop-on-overflow "filtered" sink. Grounded on
// _examples/original_source/crates/zelos-trace/src/sink.rs.
package sink

import (
	"context"
	"errors"
	"sync"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/filter"
	"github.com/signaltap/signaltap/ipc"
)

// Handle is the router's output contract (spec §4.3): send one message,
// asynchronously, to one sink. An error for which IsEvicted reports true
// means the sink's receiving end is gone and the router evicts it; any other
// error is logged by the router and the sink stays attached. nil means the
// message was delivered or (for a filtered sink under overflow) deliberately
// dropped.
type Handle interface {
	SendAsync(ctx context.Context, msg *ipc.MessageWithId) error
}

// BlockingAllSink is the backpressure-applying sink: no filter, and
// SendAsync suspends until the bounded channel has room. Used where the
// subscriber promises to keep up; a slow BlockingAllSink stalls the router
// and, transitively, producers blocked on the ingress queue.
type BlockingAllSink struct {
	ch   chan *ipc.MessageWithId
	done <-chan struct{} // closed when the receiving side goes away
}

// NewBlockingAllSink returns a sink with the given channel capacity. done
// should be closed by the owner when the consumer reading Messages() is
// gone, so SendAsync can report eviction instead of blocking forever.
func NewBlockingAllSink(capacity int, done <-chan struct{}) *BlockingAllSink {
	return &BlockingAllSink{ch: make(chan *ipc.MessageWithId, capacity), done: done}
}

// Messages returns the channel the consumer reads from.
func (s *BlockingAllSink) Messages() <-chan *ipc.MessageWithId { return s.ch }

func (s *BlockingAllSink) SendAsync(ctx context.Context, msg *ipc.MessageWithId) error {
	select {
	case s.ch <- msg:
		return nil
	case <-s.done:
		return errs.ErrStreamEnded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FilteredSink is the non-blocking sink: a bounded channel plus a
// read-write-locked filter list. On each message it checks the filter list
// and, if any filter matches, attempts a non-blocking enqueue; on overflow
// it drops the message and continues rather than blocking the router.
type FilteredSink struct {
	ch     chan *ipc.MessageWithId
	done   <-chan struct{}
	mu     sync.RWMutex
	filter []filter.Filter
	onDrop func(msg *ipc.MessageWithId)
}

// Option configures a FilteredSink at construction time.
type Option func(*FilteredSink)

// WithOnDrop registers a hook invoked (outside any lock) whenever a message
// matched this sink's filters but was dropped due to queue overflow — the
// seam sinkx/deadletter hangs off of.
func WithOnDrop(fn func(msg *ipc.MessageWithId)) Option {
	return func(s *FilteredSink) { s.onDrop = fn }
}

// NewFilteredSink returns an unfiltered (matches nothing until Subscribe is
// called) sink with the given channel capacity.
func NewFilteredSink(capacity int, done <-chan struct{}, opts ...Option) *FilteredSink {
	s := &FilteredSink{ch: make(chan *ipc.MessageWithId, capacity), done: done}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Messages returns the channel the consumer reads from.
func (s *FilteredSink) Messages() <-chan *ipc.MessageWithId { return s.ch }

// Subscribe adds f to this sink's filter list if not already present.
func (s *FilteredSink) Subscribe(f filter.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.filter {
		if existing == f {
			return
		}
	}
	s.filter = append(s.filter, f)
}

// Unsubscribe removes a structurally-equal filter from this sink's list, if
// present.
func (s *FilteredSink) Unsubscribe(f filter.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.filter {
		if existing == f {
			s.filter = append(s.filter[:i], s.filter[i+1:]...)
			return
		}
	}
}

func (s *FilteredSink) matches(msg *ipc.MessageWithId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.filter {
		if f.Matches(msg) {
			return true
		}
	}
	return false
}

func (s *FilteredSink) SendAsync(ctx context.Context, msg *ipc.MessageWithId) error {
	select {
	case <-s.done:
		return errs.ErrStreamEnded
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !s.matches(msg) {
		return nil
	}

	select {
	case s.ch <- msg:
		return nil
	default:
		if s.onDrop != nil {
			s.onDrop(msg)
		}
		return nil // drop-on-overflow: never blocks the router, never evicts
	}
}

// IsEvicted reports whether err signals that the router should remove this
// sink (the counterpart receiver is gone), as opposed to a benign drop.
func IsEvicted(err error) bool {
	return err != nil && (errors.Is(err, errs.ErrStreamEnded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
