package usecase

import (
	"context"
	"fmt"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// GetLoanUseCase retrieves a loan together with the amount repaid so far.
type GetLoanUseCase struct {
	loanRepo      port.LoanRepository
	repaymentRepo port.RepaymentRepository
	validator     *service.RepaymentValidator
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(
	loanRepo port.LoanRepository,
	repaymentRepo port.RepaymentRepository,
	validator *service.RepaymentValidator,
) *GetLoanUseCase {
	return &GetLoanUseCase{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		validator:     validator,
	}
}

// Execute fetches a loan by ID.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if err := authorizeLoan(req.Actor, loan); err != nil {
		return dto.LoanResponse{}, err
	}

	repayments, err := uc.repaymentRepo.FindByLoanID(ctx, loan.ID())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find repayments: %w", err)
	}

	return toLoanResponse(loan, uc.validator.AmountRepaid(loan, repayments)), nil
}
