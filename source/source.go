// Package source implements the producer-facing API: schema registration
// and typed event emission onto a router's ingress queue. Grounded on
// _examples/original_source/crates/zelos-trace/src/source.rs.
package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/internal/clock"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

// eventSchema is the source-local record of a registered event: its
// declared fields, fast-pathed for try_insert_<type> validation.
type eventSchema struct {
	fields []ipc.EventField
}

func (es *eventSchema) fieldByName(name string) *ipc.EventField {
	for i := range es.fields {
		if es.fields[i].Name == name {
			return &es.fields[i]
		}
	}
	return nil
}

// Source is a producer bound to one segment: a unique, time-ordered segment
// id and a human-readable source name. All messages it emits carry both.
type Source struct {
	SegmentID  uuid.UUID
	SourceName string

	ingress chan<- *ipc.MessageWithId

	mu     sync.Mutex
	events map[string]*eventSchema

	closed bool
}

// New mints a segment id, emits TraceSegmentStart, and returns a Source
// bound to ingress. Close (typically deferred) must be called to emit
// TraceSegmentEnd — Go has no destructors (spec §9 "Source Drop" note).
func New(sourceName string, ingress chan<- *ipc.MessageWithId) (*Source, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("signaltap: minting segment id: %w", err)
	}
	s := &Source{SegmentID: id, SourceName: sourceName, ingress: ingress, events: map[string]*eventSchema{}}
	if err := s.trySend(ipc.TraceSegmentStart{TimeNs: clock.NowNs(), SourceName: sourceName}); err != nil {
		return nil, err
	}
	return s, nil
}

// trySend is the fail-fast, non-blocking counterpart used by the sync
// emission path.
func (s *Source) trySend(msg ipc.Message) error {
	select {
	case s.ingress <- &ipc.MessageWithId{SegmentID: s.SegmentID, SourceName: s.SourceName, Msg: msg}:
		return nil
	default:
		return errs.ErrRouterUnavailable
	}
}

// sendAsync applies backpressure instead of failing when the ingress queue
// is full (the async registration/emission variants named in spec §4.5).
func (s *Source) sendAsync(ctx context.Context, msg ipc.Message) error {
	select {
	case s.ingress <- &ipc.MessageWithId{SegmentID: s.SegmentID, SourceName: s.SourceName, Msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close emits TraceSegmentEnd. Forgetting to call it leaves end_time unset
// for this segment. Safe to call more than once; only the first call sends.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.trySend(ipc.TraceSegmentEnd{TimeNs: clock.NowNs()})
}

// BuildEvent begins registering a new event schema named name. Build() must
// be called on the returned EventBuilder to register it.
func (s *Source) BuildEvent(name string) *EventBuilder {
	return &EventBuilder{source: s, name: name}
}

// EventBuilder accumulates fields for a not-yet-registered event.
type EventBuilder struct {
	source *Source
	name   string
	fields []ipc.EventField
}

// AddField declares one typed field on the event under construction.
func (b *EventBuilder) AddField(name string, dataType value.DataType, unit string) *EventBuilder {
	b.fields = append(b.fields, ipc.EventField{Name: name, DataType: dataType, Unit: unit})
	return b
}

// Build registers the event's schema (emitting TraceEventSchema) and
// returns a Handle for emitting events under it. Registration is rejected
// with ErrDuplicateEvent if name is already registered on this source.
func (b *EventBuilder) Build() (*Handle, error) {
	s := b.source
	s.mu.Lock()
	if _, exists := s.events[b.name]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateEvent, b.name)
	}
	es := &eventSchema{fields: b.fields}
	s.events[b.name] = es
	s.mu.Unlock()

	if err := s.trySend(ipc.TraceEventSchema{Name: b.name, Fields: b.fields}); err != nil {
		return nil, err
	}
	return &Handle{source: s, name: b.name, schema: es}, nil
}

// BuildAsync is the async counterpart of Build: it applies backpressure on
// the ingress queue rather than failing outright if it is full.
func (b *EventBuilder) BuildAsync(ctx context.Context) (*Handle, error) {
	s := b.source
	s.mu.Lock()
	if _, exists := s.events[b.name]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateEvent, b.name)
	}
	es := &eventSchema{fields: b.fields}
	s.events[b.name] = es
	s.mu.Unlock()

	if err := s.sendAsync(ctx, ipc.TraceEventSchema{Name: b.name, Fields: b.fields}); err != nil {
		return nil, err
	}
	return &Handle{source: s, name: b.name, schema: es}, nil
}

// Handle lets the owner emit events of one registered schema.
type Handle struct {
	source *Source
	name   string
	schema *eventSchema
}

// Event begins building one event instance under this handle's schema.
func (h *Handle) Event() *EventInstanceBuilder {
	return &EventInstanceBuilder{handle: h, fields: map[string]value.Value{}}
}

// EventInstanceBuilder accumulates typed field values for one TraceEvent.
type EventInstanceBuilder struct {
	handle *Handle
	fields map[string]value.Value
	err    error
}

func (b *EventInstanceBuilder) insert(fieldName string, v value.Value) *EventInstanceBuilder {
	if b.err != nil {
		return b
	}
	fs := b.handle.schema.fieldByName(fieldName)
	if fs == nil {
		b.err = fmt.Errorf("%w: %q", errs.ErrUnknownField, fieldName)
		return b
	}
	if fs.DataType != v.DataType() {
		b.err = fmt.Errorf("%w: field %q wants %s, got %s", errs.ErrSchemaTypeMismatch, fieldName, fs.DataType, v.DataType())
		return b
	}
	b.fields[fieldName] = v
	return b
}

func (b *EventInstanceBuilder) TryInsertInt8(field string, v int8) *EventInstanceBuilder {
	return b.insert(field, value.Int8Value(v))
}
func (b *EventInstanceBuilder) TryInsertInt16(field string, v int16) *EventInstanceBuilder {
	return b.insert(field, value.Int16Value(v))
}
func (b *EventInstanceBuilder) TryInsertInt32(field string, v int32) *EventInstanceBuilder {
	return b.insert(field, value.Int32Value(v))
}
func (b *EventInstanceBuilder) TryInsertInt64(field string, v int64) *EventInstanceBuilder {
	return b.insert(field, value.Int64Value(v))
}
func (b *EventInstanceBuilder) TryInsertUInt8(field string, v uint8) *EventInstanceBuilder {
	return b.insert(field, value.UInt8Value(v))
}
func (b *EventInstanceBuilder) TryInsertUInt16(field string, v uint16) *EventInstanceBuilder {
	return b.insert(field, value.UInt16Value(v))
}
func (b *EventInstanceBuilder) TryInsertUInt32(field string, v uint32) *EventInstanceBuilder {
	return b.insert(field, value.UInt32Value(v))
}
func (b *EventInstanceBuilder) TryInsertUInt64(field string, v uint64) *EventInstanceBuilder {
	return b.insert(field, value.UInt64Value(v))
}
func (b *EventInstanceBuilder) TryInsertFloat32(field string, v float32) *EventInstanceBuilder {
	return b.insert(field, value.Float32Value(v))
}
func (b *EventInstanceBuilder) TryInsertFloat64(field string, v float64) *EventInstanceBuilder {
	return b.insert(field, value.Float64Value(v))
}
func (b *EventInstanceBuilder) TryInsertTimestampNs(field string, v int64) *EventInstanceBuilder {
	return b.insert(field, value.TimestampNsValue(v))
}
func (b *EventInstanceBuilder) TryInsertBinary(field string, v []byte) *EventInstanceBuilder {
	return b.insert(field, value.BinaryValue(v))
}
func (b *EventInstanceBuilder) TryInsertString(field string, v string) *EventInstanceBuilder {
	return b.insert(field, value.StringValue(v))
}
func (b *EventInstanceBuilder) TryInsertBool(field string, v bool) *EventInstanceBuilder {
	return b.insert(field, value.BoolValue(v))
}

// Emit sends a TraceEvent timestamped now, or returns the first validation
// error recorded by a TryInsert call.
func (b *EventInstanceBuilder) Emit() error {
	return b.EmitAt(clock.NowNs())
}

// EmitAt is Emit with a caller-supplied timestamp.
func (b *EventInstanceBuilder) EmitAt(timeNs int64) error {
	if b.err != nil {
		return b.err
	}
	return b.handle.source.trySend(ipc.TraceEvent{TimeNs: timeNs, Name: b.handle.name, Fields: b.fields})
}

// EmitAsync is the async counterpart of Emit: it applies backpressure on
// the ingress queue rather than failing when full.
func (b *EventInstanceBuilder) EmitAsync(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	return b.handle.source.sendAsync(ctx, ipc.TraceEvent{TimeNs: clock.NowNs(), Name: b.handle.name, Fields: b.fields})
}

// AddValueTable emits a TraceEventFieldNamedValues message giving
// human-readable labels to specific values of one field. There is no local
// pre-check against the schema (spec §4.5); the router applies invariant 6
// (unknown event/field is a no-op) when it merges this into metadata.
func (s *Source) AddValueTable(eventName, fieldName string, pairs map[value.Value]string) error {
	values := make(map[value.Value]string, len(pairs))
	for k, v := range pairs {
		values[k] = v
	}
	return s.trySend(ipc.TraceEventFieldNamedValues{EventName: eventName, FieldName: fieldName, Values: values})
}

// AddValueTableAsync is the async counterpart, applying backpressure rather
// than failing when the ingress queue is full.
func (s *Source) AddValueTableAsync(ctx context.Context, eventName, fieldName string, pairs map[value.Value]string) error {
	values := make(map[value.Value]string, len(pairs))
	for k, v := range pairs {
		values[k] = v
	}
	return s.sendAsync(ctx, ipc.TraceEventFieldNamedValues{EventName: eventName, FieldName: fieldName, Values: values})
}
