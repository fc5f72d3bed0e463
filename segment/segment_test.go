package segment

import (
	"testing"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

func TestStartEndRoundtrip(t *testing.T) {
	s := Empty("")
	s = s.Update(ipc.TraceSegmentStart{TimeNs: 100, SourceName: "src"})

	msgs := s.AsIPC()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message before End, got %d", len(msgs))
	}
	start, ok := msgs[0].(ipc.TraceSegmentStart)
	if !ok || start.TimeNs != 100 || start.SourceName != "src" {
		t.Fatalf("unexpected start message: %#v", msgs[0])
	}

	s = s.Update(ipc.TraceSegmentEnd{TimeNs: 150})
	msgs = s.AsIPC()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after End, got %d", len(msgs))
	}
	if end, ok := msgs[1].(ipc.TraceSegmentEnd); !ok || end.TimeNs != 150 {
		t.Fatalf("unexpected end message: %#v", msgs[1])
	}
}

func TestStartTimeDownwardOnly(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceSegmentStart{TimeNs: 200, SourceName: "src"})
	s = s.Update(ipc.TraceSegmentStart{TimeNs: 50, SourceName: "src"})
	s = s.Update(ipc.TraceSegmentStart{TimeNs: 300, SourceName: "src"})

	if *s.StartTime != 50 {
		t.Fatalf("StartTime = %d, want 50 (earliest)", *s.StartTime)
	}
}

func TestEndTimeLatest(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceSegmentEnd{TimeNs: 50})
	s = s.Update(ipc.TraceSegmentEnd{TimeNs: 300})
	s = s.Update(ipc.TraceSegmentEnd{TimeNs: 100})

	if *s.EndTime != 300 {
		t.Fatalf("EndTime = %d, want 300 (latest)", *s.EndTime)
	}
}

func TestSchemaWriteOnce(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceEventSchema{Name: "hello", Fields: []ipc.EventField{{Name: "sig", DataType: value.Int32}}})
	s = s.Update(ipc.TraceEventSchema{Name: "hello", Fields: []ipc.EventField{{Name: "other", DataType: value.String}}})

	es := s.Schema("hello")
	if len(es.Fields) != 1 || es.Fields[0].Name != "sig" {
		t.Fatalf("schema was overwritten by second registration: %#v", es)
	}
}

func TestEventNeverMutatesMetadata(t *testing.T) {
	s := Empty("src")
	before := s
	s2 := s.Update(ipc.TraceEvent{TimeNs: 1, Name: "hello", Fields: map[string]value.Value{"sig": value.Int32Value(1)}})

	if s2 != before {
		t.Fatalf("TraceEvent must be a no-op on metadata")
	}
}

func TestNamedValuesUnknownEventOrFieldIsNoop(t *testing.T) {
	s := Empty("src")
	before := s
	s = s.Update(ipc.TraceEventFieldNamedValues{EventName: "missing", FieldName: "x", Values: map[value.Value]string{value.UInt8Value(0): "idle"}})
	if s != before {
		t.Fatalf("NamedValues referencing an unknown event must be a no-op")
	}

	s = s.Update(ipc.TraceEventSchema{Name: "status", Fields: []ipc.EventField{{Name: "status_code", DataType: value.UInt8}}})
	before = s
	s = s.Update(ipc.TraceEventFieldNamedValues{EventName: "status", FieldName: "missing_field", Values: map[value.Value]string{value.UInt8Value(0): "idle"}})
	if s != before {
		t.Fatalf("NamedValues referencing an unknown field must be a no-op")
	}
}

func TestValueTableLastWriteWins(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceEventSchema{Name: "status", Fields: []ipc.EventField{{Name: "status_code", DataType: value.UInt8}}})
	s = s.Update(ipc.TraceEventFieldNamedValues{
		EventName: "status", FieldName: "status_code",
		Values: map[value.Value]string{value.UInt8Value(0): "idle", value.UInt8Value(1): "busy"},
	})
	s = s.Update(ipc.TraceEventFieldNamedValues{
		EventName: "status", FieldName: "status_code",
		Values: map[value.Value]string{value.UInt8Value(1): "BUSY"},
	})

	fs := s.Schema("status").fieldByName("status_code")
	if fs.ValueTable[value.UInt8Value(0)] != "idle" {
		t.Fatalf("expected idle label to survive, got %q", fs.ValueTable[value.UInt8Value(0)])
	}
	if fs.ValueTable[value.UInt8Value(1)] != "BUSY" {
		t.Fatalf("expected overwritten label BUSY, got %q", fs.ValueTable[value.UInt8Value(1)])
	}
}

func TestAsIPCOrderSchemaThenValueTable(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"})
	s = s.Update(ipc.TraceEventSchema{Name: "status", Fields: []ipc.EventField{{Name: "status_code", DataType: value.UInt8}}})
	s = s.Update(ipc.TraceEventFieldNamedValues{
		EventName: "status", FieldName: "status_code",
		Values: map[value.Value]string{value.UInt8Value(0): "idle"},
	})

	msgs := s.AsIPC()
	if len(msgs) != 3 {
		t.Fatalf("expected Start, Schema, NamedValues; got %d messages", len(msgs))
	}
	if _, ok := msgs[0].(ipc.TraceSegmentStart); !ok {
		t.Fatalf("msgs[0] should be Start, got %T", msgs[0])
	}
	if _, ok := msgs[1].(ipc.TraceEventSchema); !ok {
		t.Fatalf("msgs[1] should be EventSchema, got %T", msgs[1])
	}
	if _, ok := msgs[2].(ipc.TraceEventFieldNamedValues); !ok {
		t.Fatalf("msgs[2] should be NamedValues, got %T", msgs[2])
	}
}

func TestFieldRefsMatching(t *testing.T) {
	s := Empty("src")
	s = s.Update(ipc.TraceEventSchema{Name: "hello", Fields: []ipc.EventField{{Name: "sig", DataType: value.Int32}}})
	s = s.Update(ipc.TraceEventSchema{Name: "other", Fields: []ipc.EventField{{Name: "x", DataType: value.Int32}}})

	refs := s.FieldRefsMatching("hello")
	if len(refs) != 1 || refs[0].Field.Name != "sig" {
		t.Fatalf("unexpected refs: %#v", refs)
	}

	all := s.FieldRefsMatching("*")
	if len(all) != 2 {
		t.Fatalf("expected 2 refs matching *, got %d", len(all))
	}
}
