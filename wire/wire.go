// Package wire defines the on-the-wire message types for the Publish and
// Subscribe RPCs and marshals them to real protobuf wire format using
// google.golang.org/protobuf/encoding/protowire directly — this environment
// has no protoc/buf invocation available, so there is no .proto file or
// protoc-gen-go output to generate from (see DESIGN.md). Every type here
// implements the small wireMessage contract so codec.go can marshal any of
// them uniformly through a single grpc.Codec.
package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// wireMessage is the contract every type in this package satisfies.
type wireMessage interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// DataType mirrors value.DataType on the wire, with UNSPECIFIED=0 reserved
// as the error sentinel spec §6 requires.
type DataType int32

const (
	DataTypeUnspecified DataType = 0
	DataTypeInt8        DataType = 1
	DataTypeInt16       DataType = 2
	DataTypeInt32       DataType = 3
	DataTypeInt64       DataType = 4
	DataTypeUInt8       DataType = 5
	DataTypeUInt16      DataType = 6
	DataTypeUInt32      DataType = 7
	DataTypeUInt64      DataType = 8
	DataTypeFloat32     DataType = 9
	DataTypeFloat64     DataType = 10
	DataTypeTimestampNs DataType = 11
	DataTypeBinary      DataType = 12
	DataTypeString      DataType = 13
	DataTypeBoolean     DataType = 14
)

// Field numbers for Value's oneof, one per DataType variant (1-14).
const (
	valueFieldInt8 protowire.Number = iota + 1
	valueFieldInt16
	valueFieldInt32
	valueFieldInt64
	valueFieldUInt8
	valueFieldUInt16
	valueFieldUInt32
	valueFieldUInt64
	valueFieldFloat32
	valueFieldFloat64
	valueFieldTimestampNs
	valueFieldBinary
	valueFieldString
	valueFieldBoolean
)

// Value is the wire oneof over the 14 scalar variants (spec §6).
type Value struct {
	Type        DataType
	Int8        int8
	Int16       int16
	Int32       int32
	Int64       int64
	UInt8       uint8
	UInt16      uint16
	UInt32      uint32
	UInt64      uint64
	Float32     float32
	Float64     float64
	TimestampNs int64
	Binary      []byte
	String      string
	Boolean     bool
}

func (v *Value) Marshal() ([]byte, error) {
	var b []byte
	switch v.Type {
	case DataTypeInt8:
		b = protowire.AppendTag(b, valueFieldInt8, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v.Int8)))
	case DataTypeInt16:
		b = protowire.AppendTag(b, valueFieldInt16, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v.Int16)))
	case DataTypeInt32:
		b = protowire.AppendTag(b, valueFieldInt32, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v.Int32)))
	case DataTypeInt64:
		b = protowire.AppendTag(b, valueFieldInt64, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int64))
	case DataTypeUInt8:
		b = protowire.AppendTag(b, valueFieldUInt8, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.UInt8))
	case DataTypeUInt16:
		b = protowire.AppendTag(b, valueFieldUInt16, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.UInt16))
	case DataTypeUInt32:
		b = protowire.AppendTag(b, valueFieldUInt32, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.UInt32))
	case DataTypeUInt64:
		b = protowire.AppendTag(b, valueFieldUInt64, protowire.VarintType)
		b = protowire.AppendVarint(b, v.UInt64)
	case DataTypeFloat32:
		b = protowire.AppendTag(b, valueFieldFloat32, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(v.Float32))
	case DataTypeFloat64:
		b = protowire.AppendTag(b, valueFieldFloat64, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.Float64))
	case DataTypeTimestampNs:
		b = protowire.AppendTag(b, valueFieldTimestampNs, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.TimestampNs))
	case DataTypeBinary:
		b = protowire.AppendTag(b, valueFieldBinary, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Binary)
	case DataTypeString:
		b = protowire.AppendTag(b, valueFieldString, protowire.BytesType)
		b = protowire.AppendString(b, v.String)
	case DataTypeBoolean:
		b = protowire.AppendTag(b, valueFieldBoolean, protowire.VarintType)
		n := uint64(0)
		if v.Boolean {
			n = 1
		}
		b = protowire.AppendVarint(b, n)
	default:
		return nil, fmt.Errorf("wire: value has unspecified data type")
	}
	return b, nil
}

func (v *Value) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch num {
		case valueFieldInt8:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Int8, b = DataTypeInt8, int8(protowire.DecodeZigZag(x)), b[n:]
		case valueFieldInt16:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Int16, b = DataTypeInt16, int16(protowire.DecodeZigZag(x)), b[n:]
		case valueFieldInt32:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Int32, b = DataTypeInt32, int32(protowire.DecodeZigZag(x)), b[n:]
		case valueFieldInt64:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Int64, b = DataTypeInt64, protowire.DecodeZigZag(x), b[n:]
		case valueFieldUInt8:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.UInt8, b = DataTypeUInt8, uint8(x), b[n:]
		case valueFieldUInt16:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.UInt16, b = DataTypeUInt16, uint16(x), b[n:]
		case valueFieldUInt32:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.UInt32, b = DataTypeUInt32, uint32(x), b[n:]
		case valueFieldUInt64:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.UInt64, b = DataTypeUInt64, x, b[n:]
		case valueFieldFloat32:
			x, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Float32, b = DataTypeFloat32, math.Float32frombits(x), b[n:]
		case valueFieldFloat64:
			x, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Float64, b = DataTypeFloat64, math.Float64frombits(x), b[n:]
		case valueFieldTimestampNs:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.TimestampNs, b = DataTypeTimestampNs, protowire.DecodeZigZag(x), b[n:]
		case valueFieldBinary:
			x, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Binary, b = DataTypeBinary, append([]byte(nil), x...), b[n:]
		case valueFieldString:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.String, b = DataTypeString, x, b[n:]
		case valueFieldBoolean:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.Type, v.Boolean, b = DataTypeBoolean, x != 0, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// EventFieldMetadata describes one field of a declared event.
type EventFieldMetadata struct {
	Name     string
	DataType DataType
	Unit     string // empty means "no unit"
}

const (
	fieldMetaName protowire.Number = iota + 1
	fieldMetaDataType
	fieldMetaUnit
)

func (f *EventFieldMetadata) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldMetaName, protowire.BytesType)
	b = protowire.AppendString(b, f.Name)
	b = protowire.AppendTag(b, fieldMetaDataType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.DataType))
	if f.Unit != "" {
		b = protowire.AppendTag(b, fieldMetaUnit, protowire.BytesType)
		b = protowire.AppendString(b, f.Unit)
	}
	return b, nil
}

func (f *EventFieldMetadata) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldMetaName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.Name, b = x, b[n:]
		case fieldMetaDataType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.DataType, b = DataType(x), b[n:]
		case fieldMetaUnit:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.Unit, b = x, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceEventSchema declares an event and its typed fields.
type TraceEventSchema struct {
	Name   string
	Fields []*EventFieldMetadata
}

const (
	eventSchemaName protowire.Number = iota + 1
	eventSchemaFields
)

func (s *TraceEventSchema) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, eventSchemaName, protowire.BytesType)
	b = protowire.AppendString(b, s.Name)
	for _, f := range s.Fields {
		if err := appendSubmessage(&b, eventSchemaFields, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *TraceEventSchema) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case eventSchemaName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.Name, b = x, b[n:]
		case eventSchemaFields:
			f := &EventFieldMetadata{}
			n, err := consumeSubmessage(b, f)
			if err != nil {
				return err
			}
			s.Fields = append(s.Fields, f)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// FieldValueEntry is one (name, value) pair of a TraceEvent's field map.
type FieldValueEntry struct {
	Name  string
	Value *Value
}

const (
	fieldValueName protowire.Number = iota + 1
	fieldValueValue
)

func (e *FieldValueEntry) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldValueName, protowire.BytesType)
	b = protowire.AppendString(b, e.Name)
	if e.Value != nil {
		if err := appendSubmessage(&b, fieldValueValue, e.Value); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (e *FieldValueEntry) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case fieldValueName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.Name, b = x, b[n:]
		case fieldValueValue:
			v := &Value{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			e.Value, b = v, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceEvent is a data point: a set of named field values observed at a
// point in time.
type TraceEvent struct {
	TimeNs int64
	Name   string
	Fields []*FieldValueEntry
}

const (
	eventTimeNs protowire.Number = iota + 1
	eventName
	eventFields
)

func (e *TraceEvent) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, eventTimeNs, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(e.TimeNs))
	b = protowire.AppendTag(b, eventName, protowire.BytesType)
	b = protowire.AppendString(b, e.Name)
	for _, f := range e.Fields {
		if err := appendSubmessage(&b, eventFields, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (e *TraceEvent) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case eventTimeNs:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.TimeNs, b = protowire.DecodeZigZag(x), b[n:]
		case eventName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.Name, b = x, b[n:]
		case eventFields:
			f := &FieldValueEntry{}
			n, err := consumeSubmessage(b, f)
			if err != nil {
				return err
			}
			e.Fields = append(e.Fields, f)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// ValueLabelEntry is one (value, label) pair of a NamedValues value table.
type ValueLabelEntry struct {
	Value *Value
	Label string
}

const (
	valueLabelValue protowire.Number = iota + 1
	valueLabelLabel
)

func (e *ValueLabelEntry) Marshal() ([]byte, error) {
	var b []byte
	if e.Value != nil {
		if err := appendSubmessage(&b, valueLabelValue, e.Value); err != nil {
			return nil, err
		}
	}
	b = protowire.AppendTag(b, valueLabelLabel, protowire.BytesType)
	b = protowire.AppendString(b, e.Label)
	return b, nil
}

func (e *ValueLabelEntry) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case valueLabelValue:
			v := &Value{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			e.Value, b = v, b[n:]
		case valueLabelLabel:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.Label, b = x, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceEventFieldNamedValues supplies enum-like value labels for one field.
type TraceEventFieldNamedValues struct {
	EventName string
	FieldName string
	Values    []*ValueLabelEntry
}

const (
	namedValuesEventName protowire.Number = iota + 1
	namedValuesFieldName
	namedValuesValues
)

func (m *TraceEventFieldNamedValues) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, namedValuesEventName, protowire.BytesType)
	b = protowire.AppendString(b, m.EventName)
	b = protowire.AppendTag(b, namedValuesFieldName, protowire.BytesType)
	b = protowire.AppendString(b, m.FieldName)
	for _, v := range m.Values {
		if err := appendSubmessage(&b, namedValuesValues, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *TraceEventFieldNamedValues) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case namedValuesEventName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.EventName, b = x, b[n:]
		case namedValuesFieldName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.FieldName, b = x, b[n:]
		case namedValuesValues:
			v := &ValueLabelEntry{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.Values = append(m.Values, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceSegmentStart announces a segment.
type TraceSegmentStart struct {
	TimeNs     int64
	SourceName string
}

const (
	segStartTimeNs protowire.Number = iota + 1
	segStartSourceName
)

func (s *TraceSegmentStart) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, segStartTimeNs, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(s.TimeNs))
	b = protowire.AppendTag(b, segStartSourceName, protowire.BytesType)
	b = protowire.AppendString(b, s.SourceName)
	return b, nil
}

func (s *TraceSegmentStart) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case segStartTimeNs:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.TimeNs, b = protowire.DecodeZigZag(x), b[n:]
		case segStartSourceName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.SourceName, b = x, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceSegmentEnd announces segment closure.
type TraceSegmentEnd struct {
	TimeNs int64
}

const segEndTimeNs protowire.Number = 1

func (s *TraceSegmentEnd) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, segEndTimeNs, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(s.TimeNs))
	return b, nil
}

func (s *TraceSegmentEnd) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case segEndTimeNs:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.TimeNs, b = protowire.DecodeZigZag(x), b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceMessage wraps {segment_id, source_name, msg: oneof{...}} per spec §6.
type TraceMessage struct {
	SegmentID             [16]byte
	SourceName            string
	SegmentStart          *TraceSegmentStart
	SegmentEnd            *TraceSegmentEnd
	EventSchema           *TraceEventSchema
	EventFieldNamedValues *TraceEventFieldNamedValues
	Event                 *TraceEvent
}

const (
	traceMsgSegmentID protowire.Number = iota + 1
	traceMsgSourceName
	traceMsgSegmentStart
	traceMsgSegmentEnd
	traceMsgEventSchema
	traceMsgEventFieldNamedValues
	traceMsgEvent
)

func (m *TraceMessage) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, traceMsgSegmentID, protowire.BytesType)
	b = protowire.AppendBytes(b, m.SegmentID[:])
	b = protowire.AppendTag(b, traceMsgSourceName, protowire.BytesType)
	b = protowire.AppendString(b, m.SourceName)

	var err error
	switch {
	case m.SegmentStart != nil:
		err = appendSubmessage(&b, traceMsgSegmentStart, m.SegmentStart)
	case m.SegmentEnd != nil:
		err = appendSubmessage(&b, traceMsgSegmentEnd, m.SegmentEnd)
	case m.EventSchema != nil:
		err = appendSubmessage(&b, traceMsgEventSchema, m.EventSchema)
	case m.EventFieldNamedValues != nil:
		err = appendSubmessage(&b, traceMsgEventFieldNamedValues, m.EventFieldNamedValues)
	case m.Event != nil:
		err = appendSubmessage(&b, traceMsgEvent, m.Event)
	default:
		return nil, fmt.Errorf("wire: trace message has no oneof payload set")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (m *TraceMessage) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case traceMsgSegmentID:
			x, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if len(x) != 16 {
				return fmt.Errorf("wire: segment_id must be 16 bytes, got %d", len(x))
			}
			copy(m.SegmentID[:], x)
			b = b[n:]
		case traceMsgSourceName:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.SourceName, b = x, b[n:]
		case traceMsgSegmentStart:
			v := &TraceSegmentStart{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.SegmentStart, b = v, b[n:]
		case traceMsgSegmentEnd:
			v := &TraceSegmentEnd{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.SegmentEnd, b = v, b[n:]
		case traceMsgEventSchema:
			v := &TraceEventSchema{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.EventSchema, b = v, b[n:]
		case traceMsgEventFieldNamedValues:
			v := &TraceEventFieldNamedValues{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.EventFieldNamedValues, b = v, b[n:]
		case traceMsgEvent:
			v := &TraceEvent{}
			n, err := consumeSubmessage(b, v)
			if err != nil {
				return err
			}
			m.Event, b = v, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func appendSubmessage(b *[]byte, num protowire.Number, m wireMessage) error {
	inner, err := m.Marshal()
	if err != nil {
		return err
	}
	*b = protowire.AppendTag(*b, num, protowire.BytesType)
	*b = protowire.AppendBytes(*b, inner)
	return nil
}

func consumeSubmessage(b []byte, m wireMessage) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := m.Unmarshal(v); err != nil {
		return 0, err
	}
	return n, nil
}
