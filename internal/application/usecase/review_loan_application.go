package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/letsema/mfi/internal/application/dto"
	"github.com/letsema/mfi/internal/domain/model"
	"github.com/letsema/mfi/internal/domain/port"
	"github.com/letsema/mfi/internal/domain/service"
)

// ReviewLoanApplicationUseCase records a staff decision on a pending loan.
// Approvals are checked against the borrower's consolidated credit profile.
type ReviewLoanApplicationUseCase struct {
	loanRepo        port.LoanRepository
	borrowerRepo    port.BorrowerRepository
	institutionRepo port.InstitutionRepository
	profileStore    port.CreditProfileStore
	publisher       port.EventPublisher
	aggregator      *service.CreditAggregator
	stacking        *service.StackingPolicy
	logger          *slog.Logger
}

// NewReviewLoanApplicationUseCase wires dependencies.
func NewReviewLoanApplicationUseCase(
	loanRepo port.LoanRepository,
	borrowerRepo port.BorrowerRepository,
	institutionRepo port.InstitutionRepository,
	profileStore port.CreditProfileStore,
	publisher port.EventPublisher,
	aggregator *service.CreditAggregator,
	stacking *service.StackingPolicy,
	logger *slog.Logger,
) *ReviewLoanApplicationUseCase {
	return &ReviewLoanApplicationUseCase{
		loanRepo:        loanRepo,
		borrowerRepo:    borrowerRepo,
		institutionRepo: institutionRepo,
		profileStore:    profileStore,
		publisher:       publisher,
		aggregator:      aggregator,
		stacking:        stacking,
		logger:          logger,
	}
}

// Execute approves or rejects the loan.
func (uc *ReviewLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.ReviewLoanApplicationRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Only staff of the lending institution review.
	staff, err := requireStaff(req.Actor, loan.InstitutionID())
	if err != nil {
		return dto.LoanResponse{}, err
	}

	// 3. Apply the decision.
	if req.Approve {
		decision, err := uc.checkStacking(ctx, loan)
		if err != nil {
			return dto.LoanResponse{}, err
		}
		if !decision.Allowed {
			uc.logger.Warn("loan approval blocked",
				"loan_id", loan.ID(),
				"borrower_id", loan.BorrowerID(),
				"reason", decision.Reason,
			)
			return dto.LoanResponse{}, fmt.Errorf("%w: %s", model.ErrStackingLimitExceeded, decision.Reason)
		}
		loan, err = loan.Approve(staff.UserID, now)
		if err != nil {
			return dto.LoanResponse{}, fmt.Errorf("approve loan: %w", err)
		}
	} else {
		loan, err = loan.Reject(staff.UserID, req.Reason, now)
		if err != nil {
			return dto.LoanResponse{}, fmt.Errorf("reject loan: %w", err)
		}
	}

	// 4. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("loan reviewed",
		"loan_id", loan.ID(),
		"status", loan.Status().String(),
		"reviewed_by", staff.UserID,
	)

	return toLoanResponse(loan, decimal.Zero), nil
}

// checkStacking evaluates the profile held for the borrower's identity in
// the lending institution's district.
func (uc *ReviewLoanApplicationUseCase) checkStacking(ctx context.Context, loan model.Loan) (service.StackingDecision, error) {
	borrower, err := uc.borrowerRepo.FindByID(ctx, loan.BorrowerID())
	if err != nil {
		return service.StackingDecision{}, fmt.Errorf("find borrower: %w", err)
	}
	inst, err := uc.institutionRepo.FindByID(ctx, loan.InstitutionID())
	if err != nil {
		return service.StackingDecision{}, fmt.Errorf("find institution: %w", err)
	}
	district, err := uc.aggregator.ResolveLocation(inst)
	if err != nil {
		return service.StackingDecision{}, err
	}

	profile, err := uc.profileStore.Find(ctx, borrower.NationalID(), district.Code)
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		return uc.stacking.Evaluate(nil, inst.ID()), nil
	case err != nil:
		return service.StackingDecision{}, fmt.Errorf("find credit profile: %w", err)
	}
	return uc.stacking.Evaluate(&profile, inst.ID()), nil
}
