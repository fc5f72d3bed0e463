package wire

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signaltap/signaltap/errs"
)

// kindOf maps a sentinel error to the errs.Kind it carries on the wire, by
// errors.Is against the package's sentinel table.
func kindOf(err error) errs.Kind {
	switch {
	case errors.Is(err, errs.ErrMissingDataType):
		return errs.KindMissingDataType
	case errors.Is(err, errs.ErrMissingValue):
		return errs.KindMissingValue
	case errors.Is(err, errs.ErrMissingMessage):
		return errs.KindMissingMessage
	case errors.Is(err, errs.ErrMissingOneOf):
		return errs.KindMissingOneOf
	case errors.Is(err, errs.ErrInvalidUuid):
		return errs.KindInvalidUuid
	case errors.Is(err, errs.ErrIntTruncation):
		return errs.KindIntTruncation
	case errors.Is(err, errs.ErrSchemaTypeMismatch):
		return errs.KindSchemaTypeMismatch
	case errors.Is(err, errs.ErrUnknownField):
		return errs.KindUnknownField
	case errors.Is(err, errs.ErrDuplicateEvent):
		return errs.KindDuplicateEvent
	case errors.Is(err, errs.ErrRouterUnavailable):
		return errs.KindRouterUnavailable
	case errors.Is(err, errs.ErrSubscriberLagged):
		return errs.KindSubscriberLagged
	case errors.Is(err, errs.ErrConnectFailed):
		return errs.KindConnectFailed
	case errors.Is(err, errs.ErrStreamEnded):
		return errs.KindStreamEnded
	case errors.Is(err, errs.ErrCancelled):
		return errs.KindCancelled
	case errors.Is(err, errs.ErrInvalidFilterSyntax):
		return errs.KindInvalidFilterSyntax
	default:
		return errs.KindUnspecified
	}
}

// codeOf maps an errs.Kind to the gRPC status code a client should observe.
// Conversion/decoding errors (malformed wire payloads) are InvalidArgument;
// router/subscriber lifecycle errors map to their natural counterparts.
func codeOf(k errs.Kind) codes.Code {
	switch k {
	case errs.KindMissingDataType, errs.KindMissingValue, errs.KindMissingMessage,
		errs.KindMissingOneOf, errs.KindInvalidUuid, errs.KindIntTruncation,
		errs.KindSchemaTypeMismatch, errs.KindUnknownField, errs.KindInvalidFilterSyntax:
		return codes.InvalidArgument
	case errs.KindDuplicateEvent:
		return codes.AlreadyExists
	case errs.KindRouterUnavailable:
		return codes.Unavailable
	case errs.KindSubscriberLagged:
		return codes.ResourceExhausted
	case errs.KindConnectFailed:
		return codes.Unavailable
	case errs.KindStreamEnded:
		return codes.OutOfRange
	case errs.KindCancelled:
		return codes.Canceled
	default:
		return codes.Unknown
	}
}

// ToStatusError wraps err as a gRPC status error with the code its Kind maps
// to, for returning from a Publish/Subscribe service handler.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codeOf(kindOf(err)), err.Error())
}
