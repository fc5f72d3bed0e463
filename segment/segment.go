// Package segment holds the per-segment derived state (schemas, value
// tables, start/end time) and the deterministic merge rules that fold an
// incoming ipc.Message into it. Grounded on
// _examples/original_source/crates/zelos-trace/src/segment.rs.
package segment

import (
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

// FieldSchema is one declared field of an event: its type, optional unit,
// and any enum-like value labels attached via TraceEventFieldNamedValues.
type FieldSchema struct {
	Name       string
	DataType   value.DataType
	Unit       string
	ValueTable map[value.Value]string
}

func newFieldSchema(f ipc.EventField) *FieldSchema {
	return &FieldSchema{Name: f.Name, DataType: f.DataType, Unit: f.Unit, ValueTable: map[value.Value]string{}}
}

func (f *FieldSchema) clone() *FieldSchema {
	cp := &FieldSchema{Name: f.Name, DataType: f.DataType, Unit: f.Unit, ValueTable: make(map[value.Value]string, len(f.ValueTable))}
	for k, v := range f.ValueTable {
		cp.ValueTable[k] = v
	}
	return cp
}

// EventSchema is a declared event name and its ordered, write-once fields.
type EventSchema struct {
	Name   string
	Fields []*FieldSchema
}

func (e *EventSchema) fieldByName(name string) *FieldSchema {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (e *EventSchema) clone() *EventSchema {
	cp := &EventSchema{Name: e.Name, Fields: make([]*FieldSchema, len(e.Fields))}
	for i, f := range e.Fields {
		cp.Fields[i] = f.clone()
	}
	return cp
}

// Segment is the derived state for one segment id: its owning source name,
// observed start/end time, and the schemas (in first-seen order) declared
// within it. Segment is treated as copy-on-write: Update never mutates the
// receiver, it returns a new *Segment (or the same pointer, unchanged, for
// no-op updates like TraceEvent) so the metadata index can publish it via an
// atomic pointer swap.
type Segment struct {
	SourceName string
	StartTime  *int64
	EndTime    *int64
	schemas    map[string]*EventSchema
	order      []string // event names, first-seen order, for deterministic AsIPC
}

// Empty returns a freshly observed segment with no start/end time and no
// schemas, owned by sourceName.
func Empty(sourceName string) *Segment {
	return &Segment{SourceName: sourceName, schemas: map[string]*EventSchema{}}
}

func (s *Segment) clone() *Segment {
	cp := &Segment{SourceName: s.SourceName, schemas: make(map[string]*EventSchema, len(s.schemas)), order: append([]string(nil), s.order...)}
	if s.StartTime != nil {
		t := *s.StartTime
		cp.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		cp.EndTime = &t
	}
	for k, v := range s.schemas {
		cp.schemas[k] = v.clone()
	}
	return cp
}

// Schema returns the named event schema, or nil if it hasn't been declared.
func (s *Segment) Schema(eventName string) *EventSchema {
	return s.schemas[eventName]
}

// Update applies msg's merge rule (invariants 2-6 of the segment metadata
// model) and returns the resulting segment. TraceEvent never mutates
// metadata (invariant 5) and returns the receiver unchanged.
func (s *Segment) Update(msg ipc.Message) *Segment {
	switch m := msg.(type) {
	case ipc.TraceSegmentStart:
		cp := s.clone()
		if cp.SourceName == "" {
			cp.SourceName = m.SourceName
		}
		if cp.StartTime == nil || m.TimeNs < *cp.StartTime {
			t := m.TimeNs
			cp.StartTime = &t
		}
		return cp

	case ipc.TraceSegmentEnd:
		cp := s.clone()
		if cp.EndTime == nil || m.TimeNs > *cp.EndTime {
			t := m.TimeNs
			cp.EndTime = &t
		}
		return cp

	case ipc.TraceEventSchema:
		if _, exists := s.schemas[m.Name]; exists {
			return s // write-once: first TraceEventSchema for a name wins
		}
		cp := s.clone()
		fields := make([]*FieldSchema, len(m.Fields))
		for i, f := range m.Fields {
			fields[i] = newFieldSchema(f)
		}
		cp.schemas[m.Name] = &EventSchema{Name: m.Name, Fields: fields}
		cp.order = append(cp.order, m.Name)
		return cp

	case ipc.TraceEventFieldNamedValues:
		es, ok := s.schemas[m.EventName]
		if !ok {
			return s // unknown event: no-op (invariant 6)
		}
		fs := es.fieldByName(m.FieldName)
		if fs == nil {
			return s // unknown field: no-op (invariant 6)
		}
		cp := s.clone()
		target := cp.schemas[m.EventName].fieldByName(m.FieldName)
		for k, v := range m.Values {
			target.ValueTable[k] = v // last-write-wins per key (invariant 4)
		}
		return cp

	case ipc.TraceEvent:
		return s // never mutates metadata (invariant 5)

	default:
		return s
	}
}

// AsIPC serializes this segment's current state into the replay sequence
// described in spec §4.1: Start (if known), one EventSchema per event in
// first-seen order, one NamedValues per non-empty value table, then End (if
// known).
func (s *Segment) AsIPC() []ipc.Message {
	var out []ipc.Message
	if s.StartTime != nil {
		out = append(out, ipc.TraceSegmentStart{TimeNs: *s.StartTime, SourceName: s.SourceName})
	}
	for _, name := range s.order {
		es := s.schemas[name]
		fields := make([]ipc.EventField, len(es.Fields))
		for i, f := range es.Fields {
			fields[i] = ipc.EventField{Name: f.Name, DataType: f.DataType, Unit: f.Unit}
		}
		out = append(out, ipc.TraceEventSchema{Name: es.Name, Fields: fields})
		for _, f := range es.Fields {
			if len(f.ValueTable) == 0 {
				continue
			}
			values := make(map[value.Value]string, len(f.ValueTable))
			for k, v := range f.ValueTable {
				values[k] = v
			}
			out = append(out, ipc.TraceEventFieldNamedValues{EventName: es.Name, FieldName: f.Name, Values: values})
		}
	}
	if s.EndTime != nil {
		out = append(out, ipc.TraceSegmentEnd{TimeNs: *s.EndTime})
	}
	return out
}

// FieldRef names one field within this segment, for SignalKey-style queries.
type FieldRef struct {
	EventName string
	Field     *FieldSchema
}

// FieldRefsMatching returns every declared field whose event name matches
// eventPattern ("*" matches any), the read-side query surface for
// SignalKey-style lookups (original_source's Signal/SignalKey types).
func (s *Segment) FieldRefsMatching(eventPattern string) []FieldRef {
	var out []FieldRef
	for _, name := range s.order {
		if eventPattern != "*" && eventPattern != name {
			continue
		}
		es := s.schemas[name]
		for _, f := range es.Fields {
			out = append(out, FieldRef{EventName: name, Field: f})
		}
	}
	return out
}
