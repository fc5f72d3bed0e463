// Package signalkey implements the library-level query grammar named in
// spec §6 ("SignalKey text grammar"): "<seg>/<source>/<event>.<field>".
// Grounded on
// _examples/original_source/crates/zelos-trace-types/src/signal_key.rs,
// supplementing the distilled spec (which names the grammar but not a
// [MODULE] for it) per SPEC_FULL.md §9.
package signalkey

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var grammar = regexp.MustCompile(`^([*\w-]+)/([^/.]+)/([^.]+)\.(.+)$`)

// Key identifies one field within one (segment, source, event), or a
// wildcard over any of those components.
type Key struct {
	SegmentID  uuid.UUID
	HasSegment bool
	SourceName string
	EventName  string
	FieldName  string
}

// Parse reads the "<seg>/<source>/<event>.<field>" grammar; seg may be "*"
// or a hyphenated UUID.
func Parse(s string) (Key, error) {
	m := grammar.FindStringSubmatch(s)
	if m == nil {
		return Key{}, fmt.Errorf("signalkey: %q does not match the <seg>/<source>/<event>.<field> grammar", s)
	}

	k := Key{SourceName: m[2], EventName: m[3], FieldName: m[4]}
	if m[1] != "*" {
		id, err := uuid.Parse(m[1])
		if err != nil {
			return Key{}, fmt.Errorf("signalkey: invalid segment id %q: %w", m[1], err)
		}
		k.SegmentID = id
		k.HasSegment = true
	}
	return k, nil
}

// Matches reports whether this key selects the given (segment, source,
// event, field) tuple; a wildcard segment matches any.
func (k Key) Matches(segmentID uuid.UUID, sourceName, eventName, fieldName string) bool {
	if k.HasSegment && k.SegmentID != segmentID {
		return false
	}
	return k.SourceName == sourceName && k.EventName == eventName && k.FieldName == fieldName
}

// String renders the key back to its text form.
func (k Key) String() string {
	seg := "*"
	if k.HasSegment {
		seg = k.SegmentID.String()
	}
	return seg + "/" + k.SourceName + "/" + k.EventName + "." + k.FieldName
}
