package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/valueobject"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{model.ErrInvalidAmount, codes.InvalidArgument},
	{model.ErrInvalidRate, codes.InvalidArgument},
	{model.ErrInvalidRegistration, codes.InvalidArgument},
	{valueobject.ErrInvalidTerm, codes.InvalidArgument},
	{valueobject.ErrInvalidPurpose, codes.InvalidArgument},
	{model.ErrNationalIDMismatch, codes.InvalidArgument},
	{model.ErrAmountExceedsBalance, codes.FailedPrecondition},
	{model.ErrLoanNotActive, codes.FailedPrecondition},
	{model.ErrNoRemainingPayments, codes.FailedPrecondition},
	{model.ErrInstitutionInactive, codes.FailedPrecondition},
	{model.ErrStackingLimitExceeded, codes.FailedPrecondition},
	{valueobject.ErrInvalidStatusTransition, codes.FailedPrecondition},
	{valueobject.ErrLocationUnresolved, codes.FailedPrecondition},
	{model.ErrLoanNotFound, codes.NotFound},
	{model.ErrRepaymentNotFound, codes.NotFound},
	{model.ErrBorrowerNotFound, codes.NotFound},
	{model.ErrInstitutionNotFound, codes.NotFound},
	{model.ErrProfileNotFound, codes.NotFound},
	{model.ErrBorrowerExists, codes.AlreadyExists},
	{model.ErrInstitutionExists, codes.AlreadyExists},
	{model.ErrAccessDenied, codes.PermissionDenied},
	{model.ErrConcurrentModification, codes.Aborted},
}

// toStatus maps a use-case error onto a gRPC status. Domain errors keep
// their message; anything else is logged and reported as internal.
func (h *MFIHandler) toStatus(ctx context.Context, err error) error {
	var exceeds *model.AmountExceedsBalanceError
	if errors.As(err, &exceeds) {
		return status.Error(codes.FailedPrecondition, exceeds.Error())
	}
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	h.logger.ErrorContext(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
