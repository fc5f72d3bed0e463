// Package ipc defines the five routed message variants and the identity
// envelope every message is wrapped in before it reaches the router.
package ipc

import (
	"github.com/google/uuid"

	"github.com/signaltap/signaltap/value"
)

// Message is the sum type over the five variants a segment can emit. It is
// implemented by TraceSegmentStart, TraceSegmentEnd, TraceEventSchema,
// TraceEventFieldNamedValues, and TraceEvent; the unexported marker method
// keeps the set closed to this package the way the teacher's proxy layer
// closes its own wire-message taxonomies.
type Message interface {
	isMessage()
}

// TraceSegmentStart announces a segment and carries the producer-observed
// start time.
type TraceSegmentStart struct {
	TimeNs     int64
	SourceName string
}

func (TraceSegmentStart) isMessage() {}

// TraceSegmentEnd announces segment closure.
type TraceSegmentEnd struct {
	TimeNs int64
}

func (TraceSegmentEnd) isMessage() {}

// EventField describes one typed field of an event schema. Unit is optional
// metadata (empty string means "none").
type EventField struct {
	Name     string
	DataType value.DataType
	Unit     string
}

// TraceEventSchema declares an event name and its typed fields.
type TraceEventSchema struct {
	Name   string
	Fields []EventField
}

func (TraceEventSchema) isMessage() {}

// TraceEventFieldNamedValues supplies enum-like value labels for one field of
// a previously (or not yet) declared event.
type TraceEventFieldNamedValues struct {
	EventName string
	FieldName string
	Values    map[value.Value]string
}

func (TraceEventFieldNamedValues) isMessage() {}

// TraceEvent is a data point: a set of named field values observed at a point
// in time.
type TraceEvent struct {
	TimeNs int64
	Name   string
	Fields map[string]value.Value
}

func (TraceEvent) isMessage() {}

// MessageWithId is the identity envelope every routed message travels in:
// every instance carries the segment it belongs to and the source that
// produced it, per spec invariant 1 (a non-nil segment id).
type MessageWithId struct {
	SegmentID  uuid.UUID
	SourceName string
	Msg        Message
}
