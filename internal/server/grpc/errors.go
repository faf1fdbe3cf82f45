package grpcserver

import (
	"context"
	"errors"

	"github.com/rzbill/sluice/internal/ledger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps ledger error kinds onto gRPC codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var code codes.Code
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		code = codes.InvalidArgument
	case ledger.KindAuthorization:
		code = codes.PermissionDenied
	case ledger.KindInsufficientFunds:
		code = codes.FailedPrecondition
	case ledger.KindNotFound:
		code = codes.NotFound
	default:
		switch {
		case errors.Is(err, context.Canceled):
			code = codes.Canceled
		case errors.Is(err, context.DeadlineExceeded):
			code = codes.DeadlineExceeded
		default:
			code = codes.Internal
		}
	}
	return status.Error(code, err.Error())
}
