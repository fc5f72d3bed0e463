package wire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/value"
)

// valueToWire converts an internal value.Value to its wire representation.
func valueToWire(v value.Value) *Value {
	w := &Value{}
	switch v.DataType() {
	case value.Int8:
		x, _ := v.AsInt8()
		w.Type, w.Int8 = DataTypeInt8, x
	case value.Int16:
		x, _ := v.AsInt16()
		w.Type, w.Int16 = DataTypeInt16, x
	case value.Int32:
		x, _ := v.AsInt32()
		w.Type, w.Int32 = DataTypeInt32, x
	case value.Int64:
		x, _ := v.AsInt64()
		w.Type, w.Int64 = DataTypeInt64, x
	case value.UInt8:
		x, _ := v.AsUInt8()
		w.Type, w.UInt8 = DataTypeUInt8, x
	case value.UInt16:
		x, _ := v.AsUInt16()
		w.Type, w.UInt16 = DataTypeUInt16, x
	case value.UInt32:
		x, _ := v.AsUInt32()
		w.Type, w.UInt32 = DataTypeUInt32, x
	case value.UInt64:
		x, _ := v.AsUInt64()
		w.Type, w.UInt64 = DataTypeUInt64, x
	case value.Float32:
		x, _ := v.AsFloat32()
		w.Type, w.Float32 = DataTypeFloat32, x
	case value.Float64:
		x, _ := v.AsFloat64()
		w.Type, w.Float64 = DataTypeFloat64, x
	case value.TimestampNs:
		x, _ := v.AsTimestampNs()
		w.Type, w.TimestampNs = DataTypeTimestampNs, x
	case value.Binary:
		x, _ := v.AsBinary()
		w.Type, w.Binary = DataTypeBinary, x
	case value.String:
		x, _ := v.AsString()
		w.Type, w.String = DataTypeString, x
	case value.Boolean:
		x, _ := v.AsBool()
		w.Type, w.Boolean = DataTypeBoolean, x
	}
	return w
}

// valueFromWire converts a wire Value back to value.Value, rejecting the
// UNSPECIFIED sentinel per spec §7.
func valueFromWire(w *Value) (value.Value, error) {
	if w == nil {
		return value.Value{}, errs.ErrMissingValue
	}
	switch w.Type {
	case DataTypeInt8:
		return value.Int8Value(w.Int8), nil
	case DataTypeInt16:
		return value.Int16Value(w.Int16), nil
	case DataTypeInt32:
		return value.Int32Value(w.Int32), nil
	case DataTypeInt64:
		return value.Int64Value(w.Int64), nil
	case DataTypeUInt8:
		return value.UInt8Value(w.UInt8), nil
	case DataTypeUInt16:
		return value.UInt16Value(w.UInt16), nil
	case DataTypeUInt32:
		return value.UInt32Value(w.UInt32), nil
	case DataTypeUInt64:
		return value.UInt64Value(w.UInt64), nil
	case DataTypeFloat32:
		return value.Float32Value(w.Float32), nil
	case DataTypeFloat64:
		return value.Float64Value(w.Float64), nil
	case DataTypeTimestampNs:
		return value.TimestampNsValue(w.TimestampNs), nil
	case DataTypeBinary:
		return value.BinaryValue(w.Binary), nil
	case DataTypeString:
		return value.StringValue(w.String), nil
	case DataTypeBoolean:
		return value.BoolValue(w.Boolean), nil
	default:
		return value.Value{}, errs.ErrMissingDataType
	}
}

func dataTypeToWire(d value.DataType) DataType {
	return DataType(d) + 1
}

func dataTypeFromWire(d DataType) (value.DataType, error) {
	if d == DataTypeUnspecified {
		return 0, errs.ErrMissingDataType
	}
	return value.DataType(d - 1), nil
}

func eventFieldToWire(f ipc.EventField) *EventFieldMetadata {
	return &EventFieldMetadata{Name: f.Name, DataType: dataTypeToWire(f.DataType), Unit: f.Unit}
}

func eventFieldFromWire(f *EventFieldMetadata) (ipc.EventField, error) {
	if f == nil {
		return ipc.EventField{}, errs.ErrMissingMessage
	}
	dt, err := dataTypeFromWire(f.DataType)
	if err != nil {
		return ipc.EventField{}, err
	}
	return ipc.EventField{Name: f.Name, DataType: dt, Unit: f.Unit}, nil
}

// MessageToWire converts one routed message into the TraceMessage envelope
// carried by the Publish and Subscribe RPCs.
func MessageToWire(mwi *ipc.MessageWithId) (*TraceMessage, error) {
	if mwi == nil {
		return nil, errs.ErrMissingMessage
	}
	w := &TraceMessage{SegmentID: mwi.SegmentID, SourceName: mwi.SourceName}

	switch msg := mwi.Msg.(type) {
	case ipc.TraceSegmentStart:
		w.SegmentStart = &TraceSegmentStart{TimeNs: msg.TimeNs, SourceName: msg.SourceName}
	case ipc.TraceSegmentEnd:
		w.SegmentEnd = &TraceSegmentEnd{TimeNs: msg.TimeNs}
	case ipc.TraceEventSchema:
		fields := make([]*EventFieldMetadata, len(msg.Fields))
		for i, f := range msg.Fields {
			fields[i] = eventFieldToWire(f)
		}
		w.EventSchema = &TraceEventSchema{Name: msg.Name, Fields: fields}
	case ipc.TraceEventFieldNamedValues:
		entries := make([]*ValueLabelEntry, 0, len(msg.Values))
		for v, label := range msg.Values {
			entries = append(entries, &ValueLabelEntry{Value: valueToWire(v), Label: label})
		}
		w.EventFieldNamedValues = &TraceEventFieldNamedValues{
			EventName: msg.EventName,
			FieldName: msg.FieldName,
			Values:    entries,
		}
	case ipc.TraceEvent:
		entries := make([]*FieldValueEntry, 0, len(msg.Fields))
		for name, v := range msg.Fields {
			entries = append(entries, &FieldValueEntry{Name: name, Value: valueToWire(v)})
		}
		w.Event = &TraceEvent{TimeNs: msg.TimeNs, Name: msg.Name, Fields: entries}
	default:
		return nil, fmt.Errorf("wire: unrecognized ipc.Message type %T", msg)
	}
	return w, nil
}

// MessageFromWire is the inverse of MessageToWire.
func MessageFromWire(w *TraceMessage) (*ipc.MessageWithId, error) {
	if w == nil {
		return nil, errs.ErrMissingMessage
	}
	segID, err := uuid.FromBytes(w.SegmentID[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidUuid, err)
	}

	mwi := &ipc.MessageWithId{SegmentID: segID, SourceName: w.SourceName}

	switch {
	case w.SegmentStart != nil:
		mwi.Msg = ipc.TraceSegmentStart{TimeNs: w.SegmentStart.TimeNs, SourceName: w.SegmentStart.SourceName}
	case w.SegmentEnd != nil:
		mwi.Msg = ipc.TraceSegmentEnd{TimeNs: w.SegmentEnd.TimeNs}
	case w.EventSchema != nil:
		fields := make([]ipc.EventField, len(w.EventSchema.Fields))
		for i, f := range w.EventSchema.Fields {
			ef, err := eventFieldFromWire(f)
			if err != nil {
				return nil, err
			}
			fields[i] = ef
		}
		mwi.Msg = ipc.TraceEventSchema{Name: w.EventSchema.Name, Fields: fields}
	case w.EventFieldNamedValues != nil:
		values := make(map[value.Value]string, len(w.EventFieldNamedValues.Values))
		for _, e := range w.EventFieldNamedValues.Values {
			v, err := valueFromWire(e.Value)
			if err != nil {
				return nil, err
			}
			values[v] = e.Label
		}
		mwi.Msg = ipc.TraceEventFieldNamedValues{
			EventName: w.EventFieldNamedValues.EventName,
			FieldName: w.EventFieldNamedValues.FieldName,
			Values:    values,
		}
	case w.Event != nil:
		fields := make(map[string]value.Value, len(w.Event.Fields))
		for _, e := range w.Event.Fields {
			v, err := valueFromWire(e.Value)
			if err != nil {
				return nil, err
			}
			fields[e.Name] = v
		}
		mwi.Msg = ipc.TraceEvent{TimeNs: w.Event.TimeNs, Name: w.Event.Name, Fields: fields}
	default:
		return nil, errs.ErrMissingOneOf
	}
	return mwi, nil
}
