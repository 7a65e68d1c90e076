package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// ListLoanRepaymentsUseCase lists a loan's repayments with their statuses
// derived as of now.
type ListLoanRepaymentsUseCase struct {
	loanRepo      port.LoanRepository
	repaymentRepo port.RepaymentRepository
	validator     *service.RepaymentValidator
}

// NewListLoanRepaymentsUseCase wires dependencies.
func NewListLoanRepaymentsUseCase(
	loanRepo port.LoanRepository,
	repaymentRepo port.RepaymentRepository,
	validator *service.RepaymentValidator,
) *ListLoanRepaymentsUseCase {
	return &ListLoanRepaymentsUseCase{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		validator:     validator,
	}
}

// Execute returns the repayments in stored order.
func (uc *ListLoanRepaymentsUseCase) Execute(
	ctx context.Context,
	req dto.ListLoanRepaymentsRequest,
) ([]dto.RepaymentResponse, error) {
	now := time.Now().UTC()

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	if err := authorizeLoan(req.Actor, loan); err != nil {
		return nil, err
	}

	repayments, err := uc.repaymentRepo.FindByLoanID(ctx, loan.ID())
	if err != nil {
		return nil, fmt.Errorf("find repayments: %w", err)
	}

	out := make([]dto.RepaymentResponse, 0, len(repayments))
	for _, r := range repayments {
		out = append(out, toRepaymentResponse(uc.validator.Refresh(r, now)))
	}
	return out, nil
}
