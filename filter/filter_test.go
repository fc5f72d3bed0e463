package filter

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

func TestAnyMatchesEverything(t *testing.T) {
	msg := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}
	if !Any().Matches(msg) {
		t.Fatalf("Any() should match everything")
	}
}

func TestEventNameRejectsNonEventMessages(t *testing.T) {
	name := "hello"
	f := New(nil, nil, &name)

	start := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "src"}}
	if f.Matches(start) {
		t.Fatalf("event_name filter must reject non-TraceEvent messages")
	}

	event := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceEvent{TimeNs: 1, Name: "hello", Fields: map[string]value.Value{}}}
	if !f.Matches(event) {
		t.Fatalf("event_name filter should match a TraceEvent with that name")
	}

	other := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "src", Msg: ipc.TraceEvent{TimeNs: 1, Name: "goodbye", Fields: map[string]value.Value{}}}
	if f.Matches(other) {
		t.Fatalf("event_name filter should reject a TraceEvent with a different name")
	}
}

func TestParseRoundTrip(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	tests := []string{
		"*/*/*",
		id.String() + "/motor/*",
		"*/battery/temperature",
	}
	for _, s := range tests {
		f, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := f.String(); got != s {
			t.Fatalf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("noslashes"); !errors.Is(err, errs.ErrInvalidFilterSyntax) {
		t.Fatalf("expected ErrInvalidFilterSyntax for no separators, got %v", err)
	}
	if _, err := Parse("a/b"); !errors.Is(err, errs.ErrInvalidFilterSyntax) {
		t.Fatalf("expected ErrInvalidFilterSyntax for one separator, got %v", err)
	}
	if _, err := Parse("not-a-uuid/src/event"); !errors.Is(err, errs.ErrInvalidUuid) {
		t.Fatalf("expected ErrInvalidUuid, got %v", err)
	}
}

func TestFilterRouting(t *testing.T) {
	motorFilter, err := Parse("*/motor/*")
	if err != nil {
		t.Fatal(err)
	}
	batteryFilter, err := Parse("*/battery/*")
	if err != nil {
		t.Fatal(err)
	}

	motorMsg := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "motor", Msg: ipc.TraceEvent{TimeNs: 1, Name: "tick", Fields: map[string]value.Value{}}}
	batteryMsg := &ipc.MessageWithId{SegmentID: uuid.Must(uuid.NewV7()), SourceName: "battery", Msg: ipc.TraceEvent{TimeNs: 1, Name: "tick", Fields: map[string]value.Value{}}}

	if !motorFilter.Matches(motorMsg) || motorFilter.Matches(batteryMsg) {
		t.Fatalf("motor filter should match only motor messages")
	}
	if !batteryFilter.Matches(batteryMsg) || batteryFilter.Matches(motorMsg) {
		t.Fatalf("battery filter should match only battery messages")
	}
}
