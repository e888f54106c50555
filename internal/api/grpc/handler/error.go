package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var kindCodes = map[model.ErrorKind]codes.Code{
	model.KindValidation:    codes.InvalidArgument,
	model.KindConflict:      codes.AlreadyExists,
	model.KindAuth:          codes.Unauthenticated,
	model.KindAuthorization: codes.PermissionDenied,
	model.KindPlanLimit:     codes.FailedPrecondition,
	model.KindNotFound:      codes.NotFound,
}

// handleError converts service errors to gRPC status errors. Unclassified
// errors are reported as internal without their details.
func handleError(err error) error {
	var serviceErr *model.Error
	if errors.As(err, &serviceErr) {
		if code, ok := kindCodes[serviceErr.Kind]; ok {
			return status.Error(code, serviceErr.Error())
		}
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
