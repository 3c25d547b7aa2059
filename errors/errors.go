package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Primary write path. Returned synchronously to the caller.
var (
	ErrChatNotFound     = fmt.Errorf("chat not found")
	ErrAccessDenied     = fmt.Errorf("access denied")
	ErrRecipientBlocked = fmt.Errorf("recipient blocked")
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrMessageDeleted   = fmt.Errorf("message deleted")
	ErrValidation       = fmt.Errorf("validation error")
)

// Notification path. Scoped to one (recipient, channel) pair, recorded as
// delivery attempt failures and never returned to the triggering write.
var (
	ErrTemplateRender     = fmt.Errorf("template render error")
	ErrChannelDispatch    = fmt.Errorf("channel dispatch error")
	ErrChannelUnavailable = fmt.Errorf("channel not configured")
	ErrUnknownRecipient   = fmt.Errorf("unknown recipient")
	ErrMissingContact     = fmt.Errorf("recipient has no contact for channel")
)

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
	ErrNotificationMissing = fmt.Errorf("notification not found")
	ErrStorageConflict     = fmt.Errorf("storage conflict retries exhausted")
)

// MapToGRPCError converts the domain taxonomy into gRPC status errors.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrChatNotFound), errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrNotificationMissing):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAccessDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrRecipientBlocked), errors.Is(err, ErrMessageDeleted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrStorageConflict):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Is and As forward to the standard library so packages importing this one
// do not need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
