package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// SubmitRepaymentUseCase records a payment a borrower reports against an
// active loan. The repayment awaits staff verification.
type SubmitRepaymentUseCase struct {
	loanRepo      port.LoanRepository
	repaymentRepo port.RepaymentRepository
	publisher     port.EventPublisher
	validator     *service.RepaymentValidator
	logger        *slog.Logger
}

// NewSubmitRepaymentUseCase wires dependencies.
func NewSubmitRepaymentUseCase(
	loanRepo port.LoanRepository,
	repaymentRepo port.RepaymentRepository,
	publisher port.EventPublisher,
	validator *service.RepaymentValidator,
	logger *slog.Logger,
) *SubmitRepaymentUseCase {
	return &SubmitRepaymentUseCase{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		publisher:     publisher,
		validator:     validator,
		logger:        logger,
	}
}

// Execute validates the payment against the loan balance and persists it.
func (uc *SubmitRepaymentUseCase) Execute(
	ctx context.Context,
	req dto.SubmitRepaymentRequest,
) (_ dto.RepaymentResponse, err error) {
	ctx, span := tracer.Start(ctx, "SubmitRepayment")
	span.SetAttributes(attribute.String("loan_id", req.LoanID))
	defer func() { endSpan(span, err) }()

	now := time.Now().UTC()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if err := authorizeLoan(req.Actor, loan); err != nil {
		return dto.RepaymentResponse{}, err
	}

	// 2. Load prior repayments.
	prior, err := uc.repaymentRepo.FindByLoanID(ctx, loan.ID())
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("find repayments: %w", err)
	}

	// 3. Validate against balance and schedule.
	result, err := uc.validator.Validate(loan, req.Amount, prior)
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("validate repayment: %w", err)
	}

	// 4. Create the repayment and derive its status.
	repayment, err := model.NewRepayment(
		loan, req.Amount, result.RemainingAmount, result.DueDate,
		req.PaymentMethod, req.Reference, now,
	)
	if err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("create repayment: %w", err)
	}
	repayment = uc.validator.Refresh(repayment, now)

	// 5. Persist.
	if err := uc.repaymentRepo.Save(ctx, repayment); err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("save repayment: %w", err)
	}

	// 6. Publish domain events.
	if err := uc.publisher.Publish(ctx, repayment.DomainEvents()...); err != nil {
		return dto.RepaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("repayment submitted",
		"repayment_id", repayment.ID(),
		"loan_id", loan.ID(),
		"amount", req.Amount.String(),
		"remaining", result.RemainingAmount.String(),
	)

	return toRepaymentResponse(repayment), nil
}
