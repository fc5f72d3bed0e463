// Package errs collects the sentinel errors named in spec §7, wrapped with
// errors.Is-compatible context rather than an exhaustive enum. Kind
// classifies the subset that crosses the wire as a distinguishable gRPC
// status code.
package errs

import "errors"

var (
	ErrMissingDataType     = errors.New("signaltap: missing data type (wire DataType=UNSPECIFIED)")
	ErrMissingValue        = errors.New("signaltap: missing value")
	ErrMissingMessage      = errors.New("signaltap: missing message")
	ErrMissingOneOf        = errors.New("signaltap: missing oneof")
	ErrInvalidUuid         = errors.New("signaltap: invalid uuid")
	ErrIntTruncation       = errors.New("signaltap: integer truncation")
	ErrSchemaTypeMismatch  = errors.New("signaltap: value does not match declared field type")
	ErrUnknownField        = errors.New("signaltap: unknown field")
	ErrDuplicateEvent      = errors.New("signaltap: event name already registered")
	ErrRouterUnavailable   = errors.New("signaltap: router unavailable")
	ErrSubscriberLagged    = errors.New("signaltap: subscriber lagged, message dropped")
	ErrConnectFailed       = errors.New("signaltap: connect failed")
	ErrStreamEnded         = errors.New("signaltap: stream ended")
	ErrCancelled           = errors.New("signaltap: cancelled")
	ErrInvalidFilterSyntax = errors.New("signaltap: invalid filter syntax")
)

// Kind classifies the sentinel errors that need a stable wire-visible code
// (the gRPC transports map Kind to status codes; see wire/codes.go).
type Kind uint8

const (
	KindUnspecified Kind = iota
	KindMissingDataType
	KindMissingValue
	KindMissingMessage
	KindMissingOneOf
	KindInvalidUuid
	KindIntTruncation
	KindSchemaTypeMismatch
	KindUnknownField
	KindDuplicateEvent
	KindRouterUnavailable
	KindSubscriberLagged
	KindConnectFailed
	KindStreamEnded
	KindCancelled
	KindInvalidFilterSyntax
)
