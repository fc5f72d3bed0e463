// Package value implements the scalar Value type shared by every IPC message:
// a tagged union over the primitive types a trace event field can hold, with
// total equality and hashing (floats compare/hash by bit pattern so NaN
// participates correctly as a map key).
package value

import (
	"encoding/base64"
	"fmt"
	"math"
)

// DataType tags the representation a Value holds.
type DataType uint8

const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	TimestampNs
	Binary
	String
	Boolean
)

func (d DataType) String() string {
	switch d {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case TimestampNs:
		return "timestamp[ns]"
	case Binary:
		return "binary"
	case String:
		return "string"
	case Boolean:
		return "bool"
	default:
		return fmt.Sprintf("datatype(%d)", uint8(d))
	}
}

// IsNumeric reports whether values of this type support arithmetic comparison.
// Ported from original_source/zelos-trace-types/src/data_type.rs. Boolean
// counts as numeric; String and Binary do not.
func (d DataType) IsNumeric() bool {
	switch d {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, Float32, Float64, Boolean:
		return true
	default:
		return false
	}
}

// Value is a comparable tagged union. Binary payloads are stored as a string
// (slices are not comparable) so the whole struct stays usable as a map key
// with Go's built-in ==.
//
// Float32/Float64 are stored as their raw bits so that equality (and use as a
// map key) is bitwise, per spec invariant 7: NaN with identical bits compares
// equal to itself, and values of different DataTypes are never equal.
type Value struct {
	typ  DataType
	i    int64  // Int8/16/32/64, TimestampNs (sign-extended)
	u    uint64 // UInt8/16/32/64, Float32/64 bit pattern, Boolean (0/1)
	s    string // String
	bin  string // Binary, stored as a string so Value stays comparable
}

func Int8Value(v int8) Value       { return Value{typ: Int8, i: int64(v)} }
func Int16Value(v int16) Value     { return Value{typ: Int16, i: int64(v)} }
func Int32Value(v int32) Value     { return Value{typ: Int32, i: int64(v)} }
func Int64Value(v int64) Value     { return Value{typ: Int64, i: v} }
func UInt8Value(v uint8) Value     { return Value{typ: UInt8, u: uint64(v)} }
func UInt16Value(v uint16) Value   { return Value{typ: UInt16, u: uint64(v)} }
func UInt32Value(v uint32) Value   { return Value{typ: UInt32, u: uint64(v)} }
func UInt64Value(v uint64) Value   { return Value{typ: UInt64, u: v} }
func Float32Value(v float32) Value { return Value{typ: Float32, u: uint64(math.Float32bits(v))} }
func Float64Value(v float64) Value   { return Value{typ: Float64, u: math.Float64bits(v)} }
func TimestampNsValue(v int64) Value { return Value{typ: TimestampNs, i: v} }
func BinaryValue(v []byte) Value   { return Value{typ: Binary, bin: string(v)} }
func StringValue(v string) Value   { return Value{typ: String, s: v} }
func BoolValue(v bool) Value {
	if v {
		return Value{typ: Boolean, u: 1}
	}
	return Value{typ: Boolean, u: 0}
}

// DataType returns the type selector for this value.
func (v Value) DataType() DataType { return v.typ }

func (v Value) AsInt8() (int8, bool) {
	if v.typ != Int8 {
		return 0, false
	}
	return int8(v.i), true
}

func (v Value) AsInt16() (int16, bool) {
	if v.typ != Int16 {
		return 0, false
	}
	return int16(v.i), true
}

func (v Value) AsInt32() (int32, bool) {
	if v.typ != Int32 {
		return 0, false
	}
	return int32(v.i), true
}

func (v Value) AsInt64() (int64, bool) {
	if v.typ != Int64 {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsUInt8() (uint8, bool) {
	if v.typ != UInt8 {
		return 0, false
	}
	return uint8(v.u), true
}

func (v Value) AsUInt16() (uint16, bool) {
	if v.typ != UInt16 {
		return 0, false
	}
	return uint16(v.u), true
}

func (v Value) AsUInt32() (uint32, bool) {
	if v.typ != UInt32 {
		return 0, false
	}
	return uint32(v.u), true
}

func (v Value) AsUInt64() (uint64, bool) {
	if v.typ != UInt64 {
		return 0, false
	}
	return v.u, true
}

func (v Value) AsFloat32() (float32, bool) {
	if v.typ != Float32 {
		return 0, false
	}
	return math.Float32frombits(uint32(v.u)), true
}

func (v Value) AsFloat64() (float64, bool) {
	if v.typ != Float64 {
		return 0, false
	}
	return math.Float64frombits(v.u), true
}

func (v Value) AsTimestampNs() (int64, bool) {
	if v.typ != TimestampNs {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsBinary() ([]byte, bool) {
	if v.typ != Binary {
		return nil, false
	}
	return []byte(v.bin), true
}

func (v Value) AsString() (string, bool) {
	if v.typ != String {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBool() (bool, bool) {
	if v.typ != Boolean {
		return false, false
	}
	return v.u != 0, true
}

// String renders a human-readable form, Binary as base64 (mirrors
// original_source/zelos-trace-types/src/value.rs's Display impl).
func (v Value) String() string {
	switch v.typ {
	case Int8, Int16, Int32, Int64, TimestampNs:
		return fmt.Sprintf("%d", v.i)
	case UInt8, UInt16, UInt32, UInt64:
		return fmt.Sprintf("%d", v.u)
	case Float32:
		f, _ := v.AsFloat32()
		return fmt.Sprintf("%v", f)
	case Float64:
		f, _ := v.AsFloat64()
		return fmt.Sprintf("%v", f)
	case Binary:
		return base64.StdEncoding.EncodeToString([]byte(v.bin))
	case String:
		return v.s
	case Boolean:
		return fmt.Sprintf("%v", v.u != 0)
	default:
		return fmt.Sprintf("<invalid value typ=%d>", v.typ)
	}
}
