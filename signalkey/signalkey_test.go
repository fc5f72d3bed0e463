package signalkey

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseAndMatch(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	k, err := Parse(id.String() + "/motor/tick.rpm")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !k.Matches(id, "motor", "tick", "rpm") {
		t.Fatalf("expected match")
	}
	if k.Matches(uuid.Must(uuid.NewV7()), "motor", "tick", "rpm") {
		t.Fatalf("expected mismatch on different segment id")
	}
}

func TestWildcardSegment(t *testing.T) {
	k, err := Parse("*/motor/tick.rpm")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !k.Matches(uuid.Must(uuid.NewV7()), "motor", "tick", "rpm") {
		t.Fatalf("wildcard segment should match any segment id")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"*/motor/tick.rpm", uuid.Must(uuid.NewV7()).String() + "/battery/status.level"} {
		k, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := k.String(); got != s {
			t.Fatalf("String() = %q, want %q", got, s)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{"missing-dot/a/b", "a/b.c", "not-a-uuid/a/b.c"}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Fatalf("Parse(%q) should have failed", s)
		}
	}
}
