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
	"github.com/letsema/mfi/pkg/events"
)

// VerifyRepaymentUseCase confirms a submitted repayment and closes the loan
// once it is fully repaid.
type VerifyRepaymentUseCase struct {
	loanRepo      port.LoanRepository
	repaymentRepo port.RepaymentRepository
	tx            port.LendingTransactor
	publisher     port.EventPublisher
	validator     *service.RepaymentValidator
	logger        *slog.Logger
}

// NewVerifyRepaymentUseCase wires dependencies.
func NewVerifyRepaymentUseCase(
	loanRepo port.LoanRepository,
	repaymentRepo port.RepaymentRepository,
	tx port.LendingTransactor,
	publisher port.EventPublisher,
	validator *service.RepaymentValidator,
	logger *slog.Logger,
) *VerifyRepaymentUseCase {
	return &VerifyRepaymentUseCase{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		tx:            tx,
		publisher:     publisher,
		validator:     validator,
		logger:        logger,
	}
}

// Execute verifies the repayment.
func (uc *VerifyRepaymentUseCase) Execute(
	ctx context.Context,
	req dto.VerifyRepaymentRequest,
) (_ dto.VerifyRepaymentResponse, err error) {
	ctx, span := tracer.Start(ctx, "VerifyRepayment")
	span.SetAttributes(attribute.String("repayment_id", req.RepaymentID))
	defer func() { endSpan(span, err) }()

	now := time.Now().UTC()

	// 1. Retrieve the repayment and its loan.
	repayment, err := uc.repaymentRepo.FindByID(ctx, req.RepaymentID)
	if err != nil {
		return dto.VerifyRepaymentResponse{}, fmt.Errorf("find repayment: %w", err)
	}
	loan, err := uc.loanRepo.FindByID(ctx, repayment.LoanID())
	if err != nil {
		return dto.VerifyRepaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Only staff of the lending institution verify.
	staff, err := requireStaff(req.Actor, loan.InstitutionID())
	if err != nil {
		return dto.VerifyRepaymentResponse{}, err
	}

	// 3. Verify.
	repayment, err = repayment.Verify(staff.UserID, now)
	if err != nil {
		return dto.VerifyRepaymentResponse{}, fmt.Errorf("verify repayment: %w", err)
	}
	repayment = uc.validator.Refresh(repayment, now)

	// 4. Persist, closing the loan when confirmed repayments cover it.
	var (
		pending events.EventCollector
		closed  bool
	)
	err = uc.tx.WithinTx(ctx, func(loans port.LoanRepository, repayments port.RepaymentRepository) error {
		if err := repayments.Save(ctx, repayment); err != nil {
			return fmt.Errorf("save repayment: %w", err)
		}
		pending.Record(repayment.DomainEvents()...)

		all, err := repayments.FindByLoanID(ctx, loan.ID())
		if err != nil {
			return fmt.Errorf("find repayments: %w", err)
		}
		if !loan.Status().IsActive() || !uc.validator.IsFullyRepaid(loan, replaceRepayment(all, repayment)) {
			return nil
		}

		repaid, err := loan.MarkRepaid(now)
		if err != nil {
			return fmt.Errorf("mark loan repaid: %w", err)
		}
		if err := loans.Save(ctx, repaid); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		pending.Record(repaid.DomainEvents()...)
		loan, closed = repaid, true
		return nil
	})
	if err != nil {
		return dto.VerifyRepaymentResponse{}, err
	}
	if closed {
		uc.logger.Info("loan repaid", "loan_id", loan.ID())
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, pending.ClearEvents()...); err != nil {
		return dto.VerifyRepaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.VerifyRepaymentResponse{
		Repayment:  toRepaymentResponse(repayment),
		LoanStatus: loan.Status().String(),
	}, nil
}

// replaceRepayment swaps the stored copy of r for r, appending it if absent.
func replaceRepayment(all []model.Repayment, r model.Repayment) []model.Repayment {
	out := make([]model.Repayment, 0, len(all)+1)
	found := false
	for _, x := range all {
		if x.ID() == r.ID() {
			x, found = r, true
		}
		out = append(out, x)
	}
	if !found {
		out = append(out, r)
	}
	return out
}
