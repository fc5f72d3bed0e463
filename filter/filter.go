// Package filter implements the conjunctive predicate over
// (segment_id, source_name, event_name) used both by in-process sink
// subscriptions and the Subscribe RPC's filter text grammar. Grounded on
// _examples/original_source/crates/zelos-trace/src/filter.rs.
package filter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/ipc"
)

const wildcard = "*"

// Filter is a value type: comparable with ==, matching spec §4.2's
// "filters are value types with structural equality."
type Filter struct {
	segmentID  uuid.UUID
	hasSegment bool
	sourceName string
	hasSource  bool
	eventName  string
	hasEvent   bool
}

// Any returns the filter that matches every message.
func Any() Filter { return Filter{} }

// New builds a filter from optional constraints; a nil pointer means "any"
// in that position.
func New(segmentID *uuid.UUID, sourceName, eventName *string) Filter {
	f := Filter{}
	if segmentID != nil {
		f.segmentID = *segmentID
		f.hasSegment = true
	}
	if sourceName != nil {
		f.sourceName = *sourceName
		f.hasSource = true
	}
	if eventName != nil {
		f.eventName = *eventName
		f.hasEvent = true
	}
	return f
}

// Parse reads the "<seg>/<source>/<event>" text grammar from spec §6:
// each component a non-empty token, "*" meaning "any" in that position, seg
// a hyphenated UUID. Fails if fewer than two "/" separators are present or
// the UUID is malformed.
func Parse(s string) (Filter, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 3 {
		return Filter{}, fmt.Errorf("%w: %q has fewer than two '/' separators", errs.ErrInvalidFilterSyntax, s)
	}
	for _, p := range parts {
		if p == "" {
			return Filter{}, fmt.Errorf("%w: %q has an empty component", errs.ErrInvalidFilterSyntax, s)
		}
	}

	f := Filter{}
	if parts[0] != wildcard {
		id, err := uuid.Parse(parts[0])
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %q: %v", errs.ErrInvalidUuid, parts[0], err)
		}
		f.segmentID = id
		f.hasSegment = true
	}
	if parts[1] != wildcard {
		f.sourceName = parts[1]
		f.hasSource = true
	}
	if parts[2] != wildcard {
		f.eventName = parts[2]
		f.hasEvent = true
	}
	return f, nil
}

// String renders the text form, such that Parse(f.String()) == f for any
// well-formed Filter.
func (f Filter) String() string {
	seg := wildcard
	if f.hasSegment {
		seg = f.segmentID.String()
	}
	source := wildcard
	if f.hasSource {
		source = f.sourceName
	}
	event := wildcard
	if f.hasEvent {
		event = f.eventName
	}
	return seg + "/" + source + "/" + event
}

// Matches is the AND of each present constraint. An event_name constraint,
// when set, rejects any non-TraceEvent message since metadata messages do
// not carry an event name.
func (f Filter) Matches(msg *ipc.MessageWithId) bool {
	if f.hasSegment && msg.SegmentID != f.segmentID {
		return false
	}
	if f.hasSource && msg.SourceName != f.sourceName {
		return false
	}
	if f.hasEvent {
		ev, ok := msg.Msg.(ipc.TraceEvent)
		if !ok || ev.Name != f.eventName {
			return false
		}
	}
	return true
}
