package wire

import (
	"math"
	"reflect"
	"testing"
)

func roundTrip[T wireMessage](t *testing.T, m T, fresh func() T) T {
	t.Helper()
	b, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := fresh()
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return out
}

func TestValueRoundTrip(t *testing.T) {
	cases := []*Value{
		{Type: DataTypeInt8, Int8: -12},
		{Type: DataTypeInt64, Int64: -9000000000},
		{Type: DataTypeUInt64, UInt64: math.MaxUint64},
		{Type: DataTypeFloat32, Float32: 1.5},
		{Type: DataTypeFloat64, Float64: math.NaN()},
		{Type: DataTypeString, String: "hello"},
		{Type: DataTypeBinary, Binary: []byte{1, 2, 3}},
		{Type: DataTypeBoolean, Boolean: true},
	}
	for _, c := range cases {
		got := roundTrip(t, c, func() *Value { return &Value{} })
		if c.Type == DataTypeFloat64 && math.IsNaN(c.Float64) {
			if !math.IsNaN(got.Float64) {
				t.Fatalf("NaN did not round-trip: %+v", got)
			}
			continue
		}
		if !reflect.DeepEqual(c, got) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
		}
	}
}

func TestTraceMessageRoundTrip(t *testing.T) {
	var segID [16]byte
	copy(segID[:], "0123456789abcdef")

	m := &TraceMessage{
		SegmentID:  segID,
		SourceName: "motor",
		Event: &TraceEvent{
			TimeNs: 42,
			Name:   "tick",
			Fields: []*FieldValueEntry{
				{Name: "rpm", Value: &Value{Type: DataTypeInt32, Int32: 1200}},
			},
		},
	}
	got := roundTrip(t, m, func() *TraceMessage { return &TraceMessage{} })
	if got.SourceName != "motor" || got.SegmentID != segID {
		t.Fatalf("envelope mismatch: %+v", got)
	}
	if got.Event == nil || got.Event.Name != "tick" || len(got.Event.Fields) != 1 {
		t.Fatalf("event payload mismatch: %+v", got.Event)
	}
	if got.Event.Fields[0].Value.Int32 != 1200 {
		t.Fatalf("field value mismatch: %+v", got.Event.Fields[0].Value)
	}
}

func TestTraceMessageNoOneofSetFailsMarshal(t *testing.T) {
	m := &TraceMessage{SourceName: "x"}
	if _, err := m.Marshal(); err == nil {
		t.Fatalf("expected error when no oneof payload is set")
	}
}

func TestSubscribeRequestRoundTrip(t *testing.T) {
	r := &SubscribeRequest{Subscribe: &SubscribeCmdSubscribe{Filter: "*/motor/tick.rpm", HasStartTime: true, StartTime: -5}}
	got := roundTrip(t, r, func() *SubscribeRequest { return &SubscribeRequest{} })
	if got.Subscribe == nil || got.Subscribe.Filter != "*/motor/tick.rpm" || got.Subscribe.StartTime != -5 {
		t.Fatalf("mismatch: %+v", got.Subscribe)
	}

	u := &SubscribeRequest{Unsubscribe: &SubscribeCmdUnsubscribe{Filter: "*/motor/tick.rpm"}}
	got2 := roundTrip(t, u, func() *SubscribeRequest { return &SubscribeRequest{} })
	if got2.Unsubscribe == nil || got2.Unsubscribe.Filter != "*/motor/tick.rpm" {
		t.Fatalf("mismatch: %+v", got2.Unsubscribe)
	}
}

func TestPublishStatusRoundTrip(t *testing.T) {
	s := &PublishStatus{TotalMessages: 10, SuccessfulMessages: 9, FailedMessages: 1, LastError: "boom"}
	got := roundTrip(t, s, func() *PublishStatus { return &PublishStatus{} })
	if !reflect.DeepEqual(s, got) {
		t.Fatalf("mismatch: got %+v, want %+v", got, s)
	}
}
